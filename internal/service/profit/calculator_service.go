package profit

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/common/metrics"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// hundred 百分比换算因子
var hundred = decimal.NewFromInt(100)

// Calculator 订单利润计算服务
// 成本解析与利润算术集中在本服务，其他模块（状态流转、报表、导出）
// 均复用这里的计算，不各自实现一份
type Calculator struct {
	orderRepo *repository.OrderRepository
	costRepo  *repository.OrderCostRepository
	configSvc *CostConfigService
}

// NewCalculator 创建利润计算服务
func NewCalculator(orderRepo *repository.OrderRepository, costRepo *repository.OrderCostRepository, configSvc *CostConfigService) *Calculator {
	return &Calculator{
		orderRepo: orderRepo,
		costRepo:  costRepo,
		configSvc: configSvc,
	}
}

// CalculateOrderProfit 计算单笔订单的利润拆解
// 只读操作，同一输入重复调用结果一致
func (c *Calculator) CalculateOrderProfit(ctx context.Context, tenantID, orderID int64) (*models.ProfitBreakdown, error) {
	order, err := c.orderRepo.GetByIDForProfit(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewOrderNotFoundError(orderID)
		}
		return nil, NewCalculationFailedError(orderID, err)
	}
	defaults, err := c.configSvc.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, NewCalculationFailedError(orderID, err)
	}
	return c.BreakdownFromLoaded(order, defaults)
}

// BreakdownFromLoaded 基于已加载关联的订单计算利润拆解
// 订单需预加载 Product、Lead.Batch、CostRecord；报表聚合按批次流式
// 复用本方法，避免逐单回查数据库
func (c *Calculator) BreakdownFromLoaded(order *models.Order, defaults *models.DefaultCosts) (*models.ProfitBreakdown, error) {
	if order.Product == nil {
		return nil, NewProductNotFoundError(order.ID)
	}
	costs := resolveCosts(order, order.CostRecord, defaults)
	return computeBreakdown(order, costs), nil
}

// ManualCostRequest 手工成本修正请求，nil 字段表示不修改
type ManualCostRequest struct {
	PackagingCost *decimal.Decimal `json:"packaging_cost"`
	PrintingCost  *decimal.Decimal `json:"printing_cost"`
	ReturnCost    *decimal.Decimal `json:"return_cost"`
}

// ValidateCosts 校验手工成本字段，收集全部非法字段后统一返回
func ValidateCosts(req *ManualCostRequest) error {
	return validateCostFields([]costField{
		{"packaging_cost", req.PackagingCost},
		{"printing_cost", req.PrintingCost},
		{"return_cost", req.ReturnCost},
	})
}

// UpdateOrderCostsManually 手工修正订单成本并重算利润
// 先整体校验再落库，任一字段非法则全部拒绝；打包/打印成本写入后
// 标记覆盖位，后续重算不再被租户默认值顶掉
func (c *Calculator) UpdateOrderCostsManually(ctx context.Context, tenantID, orderID int64, req *ManualCostRequest) (*models.ProfitBreakdown, error) {
	if err := ValidateCosts(req); err != nil {
		return nil, err
	}

	defaults, err := c.configSvc.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, NewCalculationFailedError(orderID, err)
	}

	var breakdown *models.ProfitBreakdown
	err = c.orderRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := c.orderRepo.GetForUpdate(ctx, tx, tenantID, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewOrderNotFoundError(orderID)
			}
			return err
		}
		order, err := c.orderRepo.GetByIDForProfitTx(ctx, tx, tenantID, orderID)
		if err != nil {
			return err
		}

		record := ensureRecord(order)
		if req.PackagingCost != nil {
			record.PackagingCost = *req.PackagingCost
			record.HasPackagingOverride = true
		}
		if req.PrintingCost != nil {
			record.PrintingCost = *req.PrintingCost
			record.HasPrintingOverride = true
		}
		if req.ReturnCost != nil {
			record.ReturnCost = *req.ReturnCost
		}

		breakdown, err = c.PersistBreakdown(ctx, tx, order, defaults)
		return err
	})
	if err != nil {
		var ce *ProfitCalculationError
		var ve *CostValidationError
		if errors.As(err, &ce) || errors.As(err, &ve) {
			return nil, err
		}
		return nil, NewCalculationFailedError(orderID, err)
	}

	metrics.RecordRecalculationGlobal("cost_override")
	logger.Info("订单成本手工修正完成",
		logger.TenantID(tenantID),
		logger.OrderID(orderID),
		zap.String("net_profit", breakdown.NetProfit.String()))
	return breakdown, nil
}

// PersistBreakdown 重算订单利润并把成本记录连同派生字段写回
// 需在事务内调用；订单需预加载 Product、Lead.Batch、CostRecord，
// 调用方对 CostRecord 的覆盖修改会参与本次解析
func (c *Calculator) PersistBreakdown(ctx context.Context, tx *gorm.DB, order *models.Order, defaults *models.DefaultCosts) (*models.ProfitBreakdown, error) {
	breakdown, err := c.BreakdownFromLoaded(order, defaults)
	if err != nil {
		return nil, err
	}

	record := ensureRecord(order)
	record.ProductCost = breakdown.Costs.Product
	record.LeadCost = breakdown.Costs.Lead
	record.PackagingCost = breakdown.Costs.Packaging
	record.PrintingCost = breakdown.Costs.Printing
	record.ReturnCost = breakdown.Costs.Return
	record.TotalCosts = breakdown.Costs.Total
	record.GrossProfit = breakdown.GrossProfit
	record.NetProfit = breakdown.NetProfit
	record.ProfitMargin = breakdown.ProfitMargin

	if err := c.costRepo.Save(ctx, tx, record); err != nil {
		return nil, NewCalculationFailedError(order.ID, err)
	}
	return breakdown, nil
}

// ensureRecord 确保订单挂有成本记录，缺失时就地创建空记录
func ensureRecord(order *models.Order) *models.OrderCostRecord {
	if order.CostRecord == nil {
		order.CostRecord = &models.OrderCostRecord{OrderID: order.ID}
	}
	return order.CostRecord
}

// resolveCosts 解析订单五项成本
// 显式覆盖与租户默认的取舍只在这里发生：
//   - 商品成本取商品当前成本价
//   - 线索成本取所属批次的单线索成本，无批次为 0
//   - 打包/打印成本有覆盖位用记录值，否则用租户默认
//   - 退货成本仅退货单计入，取记录中已持久化的值
func resolveCosts(order *models.Order, record *models.OrderCostRecord, defaults *models.DefaultCosts) models.CostBreakdown {
	costs := models.CostBreakdown{
		Product:   order.Product.CostPrice,
		Lead:      decimal.Zero,
		Packaging: defaults.PackagingCost,
		Printing:  defaults.PrintingCost,
		Return:    decimal.Zero,
	}
	if order.Lead != nil && order.Lead.Batch != nil {
		costs.Lead = order.Lead.Batch.CostPerLead
	}
	if record != nil {
		if record.HasPackagingOverride {
			costs.Packaging = record.PackagingCost
		}
		if record.HasPrintingOverride {
			costs.Printing = record.PrintingCost
		}
	}
	if order.Status == models.OrderStatusReturned {
		if record != nil {
			costs.Return = record.ReturnCost
		} else {
			costs.Return = defaults.ReturnCost
		}
	}
	costs.Total = costs.Product.
		Add(costs.Lead).
		Add(costs.Packaging).
		Add(costs.Printing).
		Add(costs.Return)
	return costs
}

// computeBreakdown 纯算术：由收入与已解析成本得到利润拆解
// 毛利只扣商品成本，净利扣全部成本；收入为 0 时利润率恒为 0
func computeBreakdown(order *models.Order, costs models.CostBreakdown) *models.ProfitBreakdown {
	revenue := order.Revenue()
	grossProfit := revenue.Sub(costs.Product)
	netProfit := revenue.Sub(costs.Total)

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = netProfit.Div(revenue).Mul(hundred).Round(2)
	}

	return &models.ProfitBreakdown{
		OrderID:      order.ID,
		Revenue:      revenue,
		Costs:        costs,
		GrossProfit:  grossProfit,
		NetProfit:    netProfit,
		ProfitMargin: margin,
		IsReturn:     order.Status == models.OrderStatusReturned,
	}
}
