// Package product 商品服务单元测试
package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

func newTestProductService(t *testing.T) *ProductService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return NewProductService(repository.NewProductRepository(db))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateProduct(t *testing.T) {
	svc := newTestProductService(t)
	ctx := context.Background()

	t.Run("创建成功默认上架", func(t *testing.T) {
		product, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{
			Name:      "祛痘膏",
			SKU:       "QD-001",
			Price:     dec("99.9"),
			CostPrice: dec("35"),
		})
		require.NoError(t, err)
		assert.NotZero(t, product.ID)
		assert.Equal(t, int8(models.ProductStatusOnShelf), product.Status)
		assert.True(t, product.CostPrice.Equal(dec("35")))
	})

	t.Run("负数价格拒绝", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{
			Name:  "坏商品",
			Price: dec("-1"),
		})
		assert.Equal(t, apperrors.ErrInvalidParams, err)
	})

	t.Run("负数成本价拒绝", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{
			Name:      "坏商品",
			Price:     dec("10"),
			CostPrice: dec("-1"),
		})
		assert.Equal(t, apperrors.ErrInvalidParams, err)
	})
}

func TestGetProduct(t *testing.T) {
	svc := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{Name: "查询商品", Price: dec("10")})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, 1, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "查询商品", got.Name)

	_, err = svc.GetProduct(ctx, 1, 99999)
	assert.Equal(t, apperrors.ErrProductNotFound, err)

	_, err = svc.GetProduct(ctx, 2, product.ID)
	assert.Equal(t, apperrors.ErrProductNotFound, err)
}

func TestUpdateProduct(t *testing.T) {
	svc := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{
		Name:      "待改商品",
		Price:     dec("100"),
		CostPrice: dec("40"),
	})
	require.NoError(t, err)

	t.Run("部分字段更新", func(t *testing.T) {
		name := "改名商品"
		updated, err := svc.UpdateProduct(ctx, 1, product.ID, &UpdateProductRequest{
			Name:      &name,
			CostPrice: decPtr("45"),
		})
		require.NoError(t, err)
		assert.Equal(t, "改名商品", updated.Name)
		assert.True(t, updated.CostPrice.Equal(dec("45")))
		// 未传字段保持不变
		assert.True(t, updated.Price.Equal(dec("100")))
	})

	t.Run("下架", func(t *testing.T) {
		status := int8(models.ProductStatusOffShelf)
		updated, err := svc.UpdateProduct(ctx, 1, product.ID, &UpdateProductRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int8(models.ProductStatusOffShelf), updated.Status)
	})

	t.Run("负数价格拒绝", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, 1, product.ID, &UpdateProductRequest{Price: decPtr("-1")})
		assert.Equal(t, apperrors.ErrInvalidParams, err)
	})

	t.Run("商品不存在", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, 1, 99999, &UpdateProductRequest{})
		assert.Equal(t, apperrors.ErrProductNotFound, err)
	})
}

func TestListProducts(t *testing.T) {
	svc := newTestProductService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{Name: name, Price: dec("10")})
		require.NoError(t, err)
	}
	offShelf, err := svc.CreateProduct(ctx, 1, &CreateProductRequest{Name: "D", Price: dec("10")})
	require.NoError(t, err)
	status := int8(models.ProductStatusOffShelf)
	_, err = svc.UpdateProduct(ctx, 1, offShelf.ID, &UpdateProductRequest{Status: &status})
	require.NoError(t, err)

	t.Run("全量分页", func(t *testing.T) {
		products, total, err := svc.ListProducts(ctx, 1, 1, 3, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, products, 3)
	})

	t.Run("状态过滤", func(t *testing.T) {
		onShelf := int8(models.ProductStatusOnShelf)
		_, total, err := svc.ListProducts(ctx, 1, 1, 10, &onShelf)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("租户隔离", func(t *testing.T) {
		_, total, err := svc.ListProducts(ctx, 2, 1, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}
