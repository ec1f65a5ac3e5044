// Package profit 利润计算服务单元测试
package profit

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// setupProfitTestDB 创建利润测试数据库
func setupProfitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Order{},
		&models.OrderCostRecord{},
		&models.Product{},
		&models.Lead{},
		&models.LeadBatch{},
		&models.User{},
		&models.TenantCostConfig{},
	)
	require.NoError(t, err)

	return db
}

// newTestCalculator 基于测试数据库组装计算服务
func newTestCalculator(db *gorm.DB) *Calculator {
	orderRepo := repository.NewOrderRepository(db)
	costRepo := repository.NewOrderCostRepository(db)
	configSvc := NewCostConfigService(repository.NewCostConfigRepository(db))
	return NewCalculator(orderRepo, costRepo, configSvc)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// loadedOrder 构造已加载关联的订单（不落库）
func loadedOrder(status string, price, discount string, quantity int) *models.Order {
	return &models.Order{
		ID:           1,
		TenantID:     1,
		Quantity:     quantity,
		SellingPrice: dec(price),
		Discount:     dec(discount),
		Status:       status,
		Product: &models.Product{
			ID:        1,
			CostPrice: dec("40"),
		},
	}
}

func withLeadBatch(order *models.Order, costPerLead string) *models.Order {
	batchID := int64(1)
	order.Lead = &models.Lead{
		ID:      1,
		BatchID: &batchID,
		Batch:   &models.LeadBatch{ID: 1, CostPerLead: dec(costPerLead)},
	}
	return order
}

func TestBreakdownFromLoaded_Scenarios(t *testing.T) {
	calc := newTestCalculator(setupProfitTestDB(t))

	defaults := &models.DefaultCosts{
		PackagingCost: dec("5"),
		PrintingCost:  dec("1"),
		ReturnCost:    dec("20"),
	}

	t.Run("已签收订单", func(t *testing.T) {
		order := withLeadBatch(loadedOrder(models.OrderStatusDelivered, "100", "0", 1), "10")

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)

		assert.True(t, b.Revenue.Equal(dec("100")))
		assert.True(t, b.Costs.Product.Equal(dec("40")))
		assert.True(t, b.Costs.Lead.Equal(dec("10")))
		assert.True(t, b.Costs.Packaging.Equal(dec("5")))
		assert.True(t, b.Costs.Printing.Equal(dec("1")))
		assert.True(t, b.Costs.Return.Equal(decimal.Zero))
		assert.True(t, b.Costs.Total.Equal(dec("56")))
		assert.True(t, b.GrossProfit.Equal(dec("60")))
		assert.True(t, b.NetProfit.Equal(dec("44")))
		assert.Equal(t, "44.00", b.ProfitMargin.StringFixed(2))
		assert.False(t, b.IsReturn)
	})

	t.Run("退货订单计入退货成本", func(t *testing.T) {
		order := withLeadBatch(loadedOrder(models.OrderStatusReturned, "100", "0", 1), "10")
		order.CostRecord = &models.OrderCostRecord{OrderID: 1, ReturnCost: dec("20")}

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)

		assert.True(t, b.Costs.Return.Equal(dec("20")))
		assert.True(t, b.Costs.Total.Equal(dec("76")))
		assert.True(t, b.NetProfit.Equal(dec("24")))
		assert.True(t, b.IsReturn)
	})

	t.Run("退货订单无成本记录时用租户默认退货成本", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusReturned, "100", "0", 1)

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Costs.Return.Equal(dec("20")))
	})

	t.Run("亏损订单利润率为负", func(t *testing.T) {
		order := withLeadBatch(loadedOrder(models.OrderStatusDelivered, "50", "0", 1), "10")

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.NetProfit.Equal(dec("-6")))
		assert.Equal(t, "-12.00", b.ProfitMargin.StringFixed(2))
	})

	t.Run("收入为零时利润率为零", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "100", 1)

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Revenue.Equal(decimal.Zero))
		assert.True(t, b.ProfitMargin.Equal(decimal.Zero))
		assert.True(t, b.NetProfit.IsNegative())
	})

	t.Run("折扣超过售价时收入取零", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "150", 1)

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Revenue.Equal(decimal.Zero))
	})

	t.Run("无批次线索成本为零", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "0", 1)

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Costs.Lead.Equal(decimal.Zero))
	})

	t.Run("商品缺失", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "0", 1)
		order.Product = nil

		_, err := calc.BreakdownFromLoaded(order, defaults)
		require.Error(t, err)
		ce, ok := AsProfitCalculationError(err)
		require.True(t, ok)
		assert.Equal(t, CalcErrProductNotFound, ce.Code)
	})

	t.Run("总成本恒为五项之和", func(t *testing.T) {
		order := withLeadBatch(loadedOrder(models.OrderStatusReturned, "200", "15", 3), "12.5")
		order.CostRecord = &models.OrderCostRecord{
			OrderID:              1,
			PackagingCost:        dec("7"),
			HasPackagingOverride: true,
			ReturnCost:           dec("20"),
		}

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)

		sum := b.Costs.Product.
			Add(b.Costs.Lead).
			Add(b.Costs.Packaging).
			Add(b.Costs.Printing).
			Add(b.Costs.Return)
		assert.True(t, b.Costs.Total.Equal(sum))
		assert.True(t, b.NetProfit.Equal(b.Revenue.Sub(b.Costs.Total)))
	})
}

func TestBreakdownFromLoaded_Overrides(t *testing.T) {
	calc := newTestCalculator(setupProfitTestDB(t))

	defaults := &models.DefaultCosts{
		PackagingCost: dec("5"),
		PrintingCost:  dec("1"),
	}

	t.Run("无覆盖位时用租户默认", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "0", 1)
		order.CostRecord = &models.OrderCostRecord{
			OrderID:       1,
			PackagingCost: dec("99"),
			PrintingCost:  dec("99"),
		}

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Costs.Packaging.Equal(dec("5")))
		assert.True(t, b.Costs.Printing.Equal(dec("1")))
	})

	t.Run("覆盖位生效", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "0", 1)
		order.CostRecord = &models.OrderCostRecord{
			OrderID:              1,
			PackagingCost:        dec("3"),
			HasPackagingOverride: true,
			PrintingCost:         dec("2"),
			HasPrintingOverride:  true,
		}

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Costs.Packaging.Equal(dec("3")))
		assert.True(t, b.Costs.Printing.Equal(dec("2")))
	})

	t.Run("覆盖为零不回落默认", func(t *testing.T) {
		order := loadedOrder(models.OrderStatusDelivered, "100", "0", 1)
		order.CostRecord = &models.OrderCostRecord{
			OrderID:              1,
			PackagingCost:        decimal.Zero,
			HasPackagingOverride: true,
		}

		b, err := calc.BreakdownFromLoaded(order, defaults)
		require.NoError(t, err)
		assert.True(t, b.Costs.Packaging.Equal(decimal.Zero))
	})
}

func TestValidateCosts(t *testing.T) {
	t.Run("合法请求", func(t *testing.T) {
		err := ValidateCosts(&ManualCostRequest{
			PackagingCost: decPtr("5"),
			ReturnCost:    decPtr("0"),
		})
		assert.NoError(t, err)
	})

	t.Run("收集全部非法字段", func(t *testing.T) {
		err := ValidateCosts(&ManualCostRequest{
			PackagingCost: decPtr("-1"),
			PrintingCost:  decPtr("2"),
			ReturnCost:    decPtr("-3"),
		})
		require.Error(t, err)
		ve, ok := AsCostValidationError(err)
		require.True(t, ok)
		assert.Equal(t, []string{"packaging_cost", "return_cost"}, ve.Fields)
	})

	t.Run("空请求不修改", func(t *testing.T) {
		assert.NoError(t, ValidateCosts(&ManualCostRequest{}))
	})
}

// seedProfitOrder 落库一笔带线索批次的订单
func seedProfitOrder(t *testing.T, db *gorm.DB, tenantID int64, status string) *models.Order {
	t.Helper()

	product := &models.Product{
		TenantID:  tenantID,
		Name:      "利润测试商品",
		Price:     dec("100"),
		CostPrice: dec("40"),
		Status:    models.ProductStatusOnShelf,
	}
	require.NoError(t, db.Create(product).Error)

	batch := &models.LeadBatch{
		TenantID:    tenantID,
		Name:        "利润测试批次",
		TotalCost:   dec("1000"),
		LeadCount:   100,
		CostPerLead: dec("10"),
		ImportedBy:  1,
	}
	require.NoError(t, db.Create(batch).Error)

	lead := &models.Lead{TenantID: tenantID, BatchID: &batch.ID, Name: "利润测试线索"}
	require.NoError(t, db.Create(lead).Error)

	order := &models.Order{
		OrderNo:      "SO_PROFIT_1",
		TenantID:     tenantID,
		LeadID:       &lead.ID,
		ProductID:    product.ID,
		Quantity:     1,
		SellingPrice: dec("100"),
		Discount:     decimal.Zero,
		Status:       status,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCalculateOrderProfit(t *testing.T) {
	db := setupProfitTestDB(t)
	calc := newTestCalculator(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.TenantCostConfig{
		TenantID:             1,
		DefaultPackagingCost: dec("5"),
		DefaultPrintingCost:  dec("1"),
		DefaultReturnCost:    dec("20"),
	}).Error)

	order := seedProfitOrder(t, db, 1, models.OrderStatusDelivered)

	t.Run("计算存在的订单", func(t *testing.T) {
		b, err := calc.CalculateOrderProfit(ctx, 1, order.ID)
		require.NoError(t, err)
		assert.True(t, b.NetProfit.Equal(dec("44")))
		assert.Equal(t, "44.00", b.ProfitMargin.StringFixed(2))
	})

	t.Run("重复计算结果一致", func(t *testing.T) {
		b1, err := calc.CalculateOrderProfit(ctx, 1, order.ID)
		require.NoError(t, err)
		b2, err := calc.CalculateOrderProfit(ctx, 1, order.ID)
		require.NoError(t, err)
		assert.True(t, b1.NetProfit.Equal(b2.NetProfit))
		assert.True(t, b1.Costs.Total.Equal(b2.Costs.Total))
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := calc.CalculateOrderProfit(ctx, 1, 99999)
		ce, ok := AsProfitCalculationError(err)
		require.True(t, ok)
		assert.Equal(t, CalcErrOrderNotFound, ce.Code)
	})

	t.Run("跨租户视同不存在", func(t *testing.T) {
		_, err := calc.CalculateOrderProfit(ctx, 2, order.ID)
		ce, ok := AsProfitCalculationError(err)
		require.True(t, ok)
		assert.Equal(t, CalcErrOrderNotFound, ce.Code)
	})
}

func TestUpdateOrderCostsManually(t *testing.T) {
	db := setupProfitTestDB(t)
	calc := newTestCalculator(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.TenantCostConfig{
		TenantID:             1,
		DefaultPackagingCost: dec("5"),
		DefaultPrintingCost:  dec("1"),
	}).Error)

	order := seedProfitOrder(t, db, 1, models.OrderStatusDelivered)

	t.Run("修正打包成本并重算", func(t *testing.T) {
		b, err := calc.UpdateOrderCostsManually(ctx, 1, order.ID, &ManualCostRequest{
			PackagingCost: decPtr("8"),
		})
		require.NoError(t, err)
		assert.True(t, b.Costs.Packaging.Equal(dec("8")))
		// 100 - (40 + 10 + 8 + 1)
		assert.True(t, b.NetProfit.Equal(dec("41")))

		var record models.OrderCostRecord
		require.NoError(t, db.Where("order_id = ?", order.ID).First(&record).Error)
		assert.True(t, record.HasPackagingOverride)
		assert.False(t, record.HasPrintingOverride)
		assert.True(t, record.PackagingCost.Equal(dec("8")))
		assert.True(t, record.NetProfit.Equal(dec("41")))
		assert.True(t, record.TotalCosts.Equal(dec("59")))
	})

	t.Run("覆盖位在后续重算中保持", func(t *testing.T) {
		b, err := calc.CalculateOrderProfit(ctx, 1, order.ID)
		require.NoError(t, err)
		assert.True(t, b.Costs.Packaging.Equal(dec("8")))
	})

	t.Run("非法字段整体拒绝", func(t *testing.T) {
		_, err := calc.UpdateOrderCostsManually(ctx, 1, order.ID, &ManualCostRequest{
			PackagingCost: decPtr("-2"),
			PrintingCost:  decPtr("-1"),
		})
		require.Error(t, err)
		ve, ok := AsCostValidationError(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"packaging_cost", "printing_cost"}, ve.Fields)

		// 原记录未被部分写入
		var record models.OrderCostRecord
		require.NoError(t, db.Where("order_id = ?", order.ID).First(&record).Error)
		assert.True(t, record.PackagingCost.Equal(dec("8")))
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := calc.UpdateOrderCostsManually(ctx, 1, 99999, &ManualCostRequest{
			PackagingCost: decPtr("3"),
		})
		ce, ok := AsProfitCalculationError(err)
		require.True(t, ok)
		assert.Equal(t, CalcErrOrderNotFound, ce.Code)
	})
}
