// Package order 订单服务单元测试
package order

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
	"github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

func setupOrderServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.OrderCostRecord{},
		&models.Product{},
		&models.Lead{},
		&models.LeadBatch{},
		&models.TenantCostConfig{},
		&models.User{},
	))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// orderTestEnv 订单服务测试上下文
type orderTestEnv struct {
	db        *gorm.DB
	orderSvc  *OrderService
	statusSvc *StatusService
	product   *models.Product
}

// newOrderTestEnv 组装订单与状态服务，并预置商品与租户成本配置
func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	db := setupOrderServiceTestDB(t)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	costRepo := repository.NewOrderCostRepository(db)
	configSvc := profit.NewCostConfigService(repository.NewCostConfigRepository(db))
	calculator := profit.NewCalculator(orderRepo, costRepo, configSvc)

	require.NoError(t, db.Create(&models.TenantCostConfig{
		TenantID:             1,
		DefaultPackagingCost: dec("5"),
		DefaultPrintingCost:  dec("1"),
		DefaultReturnCost:    dec("20"),
	}).Error)

	product := &models.Product{
		TenantID:  1,
		Name:      "订单测试商品",
		Price:     dec("100"),
		CostPrice: dec("40"),
		Status:    models.ProductStatusOnShelf,
	}
	require.NoError(t, db.Create(product).Error)

	return &orderTestEnv{
		db:        db,
		orderSvc:  NewOrderService(db, orderRepo, productRepo, leadRepo, calculator, configSvc),
		statusSvc: NewStatusService(db, orderRepo, calculator, configSvc),
		product:   product,
	}
}

func (e *orderTestEnv) createOrder(t *testing.T, req *CreateOrderRequest) *models.Order {
	t.Helper()
	if req == nil {
		req = &CreateOrderRequest{
			ProductID:    e.product.ID,
			CustomerName: "李四",
			Quantity:     1,
			SellingPrice: dec("100"),
		}
	}
	order, err := e.orderSvc.CreateOrder(context.Background(), 1, req)
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	env := newOrderTestEnv(t)
	ctx := context.Background()

	t.Run("下单即建立成本记录", func(t *testing.T) {
		order := env.createOrder(t, nil)

		assert.True(t, strings.HasPrefix(order.OrderNo, "SO"))
		assert.Equal(t, models.OrderStatusPending, order.Status)
		require.NotNil(t, order.CostRecord)
		// pending 不计退货成本：40 + 5 + 1
		assert.True(t, order.CostRecord.TotalCosts.Equal(dec("46")))
		assert.True(t, order.CostRecord.NetProfit.Equal(dec("54")))
	})

	t.Run("挂接线索成本", func(t *testing.T) {
		batch := &models.LeadBatch{TenantID: 1, TotalCost: dec("1000"), LeadCount: 40, CostPerLead: dec("25"), ImportedBy: 1}
		require.NoError(t, env.db.Create(batch).Error)
		lead := &models.Lead{TenantID: 1, BatchID: &batch.ID, Name: "带批次线索", Status: models.LeadStatusConverted}
		require.NoError(t, env.db.Create(lead).Error)

		order := env.createOrder(t, &CreateOrderRequest{
			LeadID:       &lead.ID,
			ProductID:    env.product.ID,
			CustomerName: "李四",
			Quantity:     1,
			SellingPrice: dec("100"),
		})
		require.NotNil(t, order.CostRecord)
		assert.True(t, order.CostRecord.LeadCost.Equal(dec("25")))
		assert.True(t, order.CostRecord.TotalCosts.Equal(dec("71")))
	})

	t.Run("负数价格拒绝", func(t *testing.T) {
		_, err := env.orderSvc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ProductID:    env.product.ID,
			CustomerName: "李四",
			Quantity:     1,
			SellingPrice: dec("-1"),
		})
		assert.Equal(t, apperrors.ErrInvalidParams, err)
	})

	t.Run("商品不存在", func(t *testing.T) {
		_, err := env.orderSvc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ProductID:    99999,
			CustomerName: "李四",
			Quantity:     1,
			SellingPrice: dec("100"),
		})
		assert.Equal(t, apperrors.ErrProductNotFound, err)
	})

	t.Run("线索不存在", func(t *testing.T) {
		missing := int64(99999)
		_, err := env.orderSvc.CreateOrder(ctx, 1, &CreateOrderRequest{
			LeadID:       &missing,
			ProductID:    env.product.ID,
			CustomerName: "李四",
			Quantity:     1,
			SellingPrice: dec("100"),
		})
		assert.Equal(t, apperrors.ErrLeadNotFound, err)
	})

	t.Run("跨租户商品不可下单", func(t *testing.T) {
		_, err := env.orderSvc.CreateOrder(ctx, 2, &CreateOrderRequest{
			ProductID:    env.product.ID,
			CustomerName: "李四",
			Quantity:     1,
			SellingPrice: dec("100"),
		})
		assert.Equal(t, apperrors.ErrProductNotFound, err)
	})
}

func TestGetOrder(t *testing.T) {
	env := newOrderTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, nil)

	got, err := env.orderSvc.GetOrder(ctx, 1, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Product)
	assert.Equal(t, "订单测试商品", got.Product.Name)
	require.NotNil(t, got.CostRecord)

	_, err = env.orderSvc.GetOrder(ctx, 1, 99999)
	assert.Equal(t, apperrors.ErrOrderNotFound, err)

	_, err = env.orderSvc.GetOrder(ctx, 2, order.ID)
	assert.Equal(t, apperrors.ErrOrderNotFound, err)
}

func TestListOrders(t *testing.T) {
	env := newOrderTestEnv(t)
	ctx := context.Background()

	first := env.createOrder(t, nil)
	second := env.createOrder(t, nil)
	_, err := env.statusSvc.ChangeStatus(ctx, 1, second.ID, models.OrderStatusConfirmed, nil)
	require.NoError(t, err)

	t.Run("全量", func(t *testing.T) {
		orders, total, err := env.orderSvc.ListOrders(ctx, 1, &ListOrdersRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, orders, 2)
	})

	t.Run("状态过滤", func(t *testing.T) {
		orders, total, err := env.orderSvc.ListOrders(ctx, 1, &ListOrdersRequest{Status: models.OrderStatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)
	})

	t.Run("订单号模糊匹配", func(t *testing.T) {
		_, total, err := env.orderSvc.ListOrders(ctx, 1, &ListOrdersRequest{OrderNo: "SO"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("租户隔离", func(t *testing.T) {
		_, total, err := env.orderSvc.ListOrders(ctx, 2, &ListOrdersRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}
