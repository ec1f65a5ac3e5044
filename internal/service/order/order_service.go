package order

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/common/metrics"
	"github.com/mingyuantech/crm-console-backend/internal/common/utils"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
	"github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

// orderNoPrefix 订单号前缀
const orderNoPrefix = "SO"

// OrderService 订单服务
type OrderService struct {
	db          *gorm.DB
	orderRepo   *repository.OrderRepository
	productRepo *repository.ProductRepository
	leadRepo    *repository.LeadRepository
	calculator  *profit.Calculator
	configSvc   *profit.CostConfigService
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	productRepo *repository.ProductRepository,
	leadRepo *repository.LeadRepository,
	calculator *profit.Calculator,
	configSvc *profit.CostConfigService,
) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		leadRepo:    leadRepo,
		calculator:  calculator,
		configSvc:   configSvc,
	}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	LeadID        *int64          `json:"lead_id"`
	ProductID     int64           `json:"product_id" binding:"required"`
	AssignedTo    *int64          `json:"assigned_to"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	CustomerPhone string          `json:"customer_phone"`
	Quantity      int             `json:"quantity" binding:"required,min=1"`
	SellingPrice  decimal.Decimal `json:"selling_price" binding:"required"`
	Discount      decimal.Decimal `json:"discount"`
	Remark        *string         `json:"remark"`
}

// CreateOrder 创建订单
// 下单即解析初始成本并建立成本记录，订单与成本记录同事务落库
func (s *OrderService) CreateOrder(ctx context.Context, tenantID int64, req *CreateOrderRequest) (*models.Order, error) {
	if req.SellingPrice.IsNegative() || req.Discount.IsNegative() {
		return nil, errors.ErrInvalidParams
	}

	if _, err := s.productRepo.GetByID(ctx, tenantID, req.ProductID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProductNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if req.LeadID != nil {
		if _, err := s.leadRepo.GetByID(ctx, tenantID, *req.LeadID); err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrLeadNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	defaults, err := s.configSvc.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	order := &models.Order{
		OrderNo:       utils.GenerateOrderNo(orderNoPrefix),
		TenantID:      tenantID,
		LeadID:        req.LeadID,
		ProductID:     req.ProductID,
		AssignedTo:    req.AssignedTo,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Quantity:      req.Quantity,
		SellingPrice:  req.SellingPrice,
		Discount:      req.Discount,
		Status:        models.OrderStatusPending,
		Remark:        req.Remark,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		loaded, err := s.orderRepo.GetByIDForProfitTx(ctx, tx, tenantID, order.ID)
		if err != nil {
			return err
		}
		_, err = s.calculator.PersistBreakdown(ctx, tx, loaded, defaults)
		if err != nil {
			return err
		}
		order.CostRecord = loaded.CostRecord
		return nil
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordOrderGlobal(models.OrderStatusPending)
	logger.Info("订单创建完成",
		logger.TenantID(tenantID),
		logger.OrderID(order.ID),
		logger.OrderNo(order.OrderNo))
	return order, nil
}

// GetOrder 获取订单详情（含关联与成本记录）
func (s *OrderService) GetOrder(ctx context.Context, tenantID, id int64) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDForProfit(ctx, tenantID, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return order, nil
}

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Status     string `form:"status"`
	ProductID  *int64 `form:"product_id"`
	AssignedTo *int64 `form:"assigned_to"`
	OrderNo    string `form:"order_no"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// ListOrders 获取订单列表
func (s *OrderService) ListOrders(ctx context.Context, tenantID int64, req *ListOrdersRequest) ([]*models.Order, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.ProductID != nil {
		filters["product_id"] = *req.ProductID
	}
	if req.AssignedTo != nil {
		filters["assigned_to"] = *req.AssignedTo
	}
	if req.OrderNo != "" {
		filters["order_no"] = req.OrderNo
	}
	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filters["start_date"] = t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			filters["end_date"] = t.Add(24*time.Hour - time.Second)
		}
	}

	return s.orderRepo.List(ctx, tenantID, (page-1)*pageSize, pageSize, filters)
}
