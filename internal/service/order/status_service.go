package order

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/common/metrics"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
	"github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

// allowedTransitions 订单状态流转表
// returned 与 cancelled 是终态，不在表内出现即不允许再流出
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {models.OrderStatusReturned},
}

// statusTimestampColumn 各状态对应的时间戳列
var statusTimestampColumn = map[string]string{
	models.OrderStatusConfirmed: "confirmed_at",
	models.OrderStatusShipped:   "shipped_at",
	models.OrderStatusDelivered: "delivered_at",
	models.OrderStatusReturned:  "returned_at",
	models.OrderStatusCancelled: "cancelled_at",
}

// transitionAllowed 判断状态流转是否合法
func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusService 订单状态流转服务
// 状态变更与成本重算在同一事务内完成：流转到 returned 必须带上
// 退货成本（显式传入或取租户默认），落库前派生字段已刷新
type StatusService struct {
	db         *gorm.DB
	orderRepo  *repository.OrderRepository
	calculator *profit.Calculator
	configSvc  *profit.CostConfigService
}

// NewStatusService 创建状态流转服务
func NewStatusService(db *gorm.DB, orderRepo *repository.OrderRepository, calculator *profit.Calculator, configSvc *profit.CostConfigService) *StatusService {
	return &StatusService{
		db:         db,
		orderRepo:  orderRepo,
		calculator: calculator,
		configSvc:  configSvc,
	}
}

// ChangeStatus 流转订单状态并重算利润
// returnCost 仅对流转到 returned 生效，nil 时取租户默认退货成本
func (s *StatusService) ChangeStatus(ctx context.Context, tenantID, orderID int64, newStatus string, returnCost *decimal.Decimal) (*models.ProfitBreakdown, error) {
	if _, ok := statusTimestampColumn[newStatus]; !ok {
		return nil, &InvalidTransitionError{From: "", To: newStatus}
	}
	if returnCost != nil && returnCost.IsNegative() {
		return nil, profit.NewCostValidationError("return_cost")
	}

	defaults, err := s.configSvc.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var breakdown *models.ProfitBreakdown
	var from string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.orderRepo.GetForUpdate(ctx, tx, tenantID, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return profit.NewOrderNotFoundError(orderID)
			}
			return err
		}
		from = locked.Status

		if !transitionAllowed(locked.Status, newStatus) {
			return &InvalidTransitionError{From: locked.Status, To: newStatus}
		}

		now := time.Now()
		fields := map[string]interface{}{
			"status":                         newStatus,
			statusTimestampColumn[newStatus]: now,
		}
		if err := s.orderRepo.UpdateFields(ctx, tx, orderID, fields); err != nil {
			return err
		}

		order, err := s.orderRepo.GetByIDForProfitTx(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}

		if newStatus == models.OrderStatusReturned {
			if order.CostRecord == nil {
				order.CostRecord = &models.OrderCostRecord{OrderID: order.ID}
			}
			if returnCost != nil {
				order.CostRecord.ReturnCost = *returnCost
			} else {
				order.CostRecord.ReturnCost = defaults.ReturnCost
			}
		}

		breakdown, err = s.calculator.PersistBreakdown(ctx, tx, order, defaults)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderGlobal(newStatus)
	metrics.RecordRecalculationGlobal("status_change")
	logger.Info("订单状态流转完成",
		logger.TenantID(tenantID),
		logger.OrderID(orderID),
		zap.String("from", from),
		zap.String("to", newStatus))
	return breakdown, nil
}

// SweepExpiredPending 取消超时未确认的订单
// 走正常状态机流转，不直接改库；返回成功取消的订单数
func (s *StatusService) SweepExpiredPending(ctx context.Context, expireAfter time.Duration, limit int) (int, error) {
	before := time.Now().Add(-expireAfter)
	orders, err := s.orderRepo.GetExpiredPending(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, o := range orders {
		if _, err := s.ChangeStatus(ctx, o.TenantID, o.ID, models.OrderStatusCancelled, nil); err != nil {
			logger.Warn("超时订单取消失败",
				logger.TenantID(o.TenantID),
				logger.OrderID(o.ID),
				logger.Err(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}
