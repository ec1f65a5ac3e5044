// Package repository 成本配置与订单成本记录仓储单元测试
package repository

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
)

// setupCostTestDB 创建成本测试数据库
func setupCostTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TenantCostConfig{},
		&models.OrderCostRecord{},
	)
	require.NoError(t, err)

	return db
}

func TestCostConfigRepository_GetByTenant(t *testing.T) {
	db := setupCostTestDB(t)
	repo := NewCostConfigRepository(db)
	ctx := context.Background()

	t.Run("不存在的配置", func(t *testing.T) {
		_, err := repo.GetByTenant(ctx, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("存在的配置", func(t *testing.T) {
		config := &models.TenantCostConfig{
			TenantID:             1,
			DefaultPackagingCost: decimal.NewFromInt(5),
			DefaultPrintingCost:  decimal.NewFromInt(1),
			DefaultReturnCost:    decimal.NewFromInt(20),
		}
		require.NoError(t, db.Create(config).Error)

		found, err := repo.GetByTenant(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found.DefaultPackagingCost.Equal(decimal.NewFromInt(5)))
		assert.True(t, found.DefaultReturnCost.Equal(decimal.NewFromInt(20)))
	})
}

func TestCostConfigRepository_Upsert(t *testing.T) {
	db := setupCostTestDB(t)
	repo := NewCostConfigRepository(db)
	ctx := context.Background()

	t.Run("首次写入创建", func(t *testing.T) {
		err := repo.Upsert(ctx, &models.TenantCostConfig{
			TenantID:             1,
			DefaultPackagingCost: decimal.NewFromInt(5),
		})
		require.NoError(t, err)

		found, err := repo.GetByTenant(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found.DefaultPackagingCost.Equal(decimal.NewFromInt(5)))
	})

	t.Run("再次写入覆盖", func(t *testing.T) {
		err := repo.Upsert(ctx, &models.TenantCostConfig{
			TenantID:             1,
			DefaultPackagingCost: decimal.NewFromInt(8),
			DefaultReturnCost:    decimal.NewFromInt(15),
		})
		require.NoError(t, err)

		found, err := repo.GetByTenant(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found.DefaultPackagingCost.Equal(decimal.NewFromInt(8)))
		assert.True(t, found.DefaultReturnCost.Equal(decimal.NewFromInt(15)))

		var count int64
		db.Model(&models.TenantCostConfig{}).Where("tenant_id = ?", 1).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestOrderCostRepository_Save(t *testing.T) {
	db := setupCostTestDB(t)
	repo := NewOrderCostRepository(db)
	ctx := context.Background()

	record := &models.OrderCostRecord{
		OrderID:     100,
		ProductCost: decimal.NewFromInt(40),
		LeadCost:    decimal.NewFromInt(25),
		TotalCosts:  decimal.NewFromInt(65),
	}

	t.Run("首次保存创建", func(t *testing.T) {
		err := repo.Save(ctx, db, record)
		require.NoError(t, err)

		found, err := repo.GetByOrderID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, found.ProductCost.Equal(decimal.NewFromInt(40)))
	})

	t.Run("再次保存覆盖", func(t *testing.T) {
		updated := &models.OrderCostRecord{
			OrderID:              100,
			ProductCost:          decimal.NewFromInt(40),
			LeadCost:             decimal.NewFromInt(25),
			PackagingCost:        decimal.NewFromInt(5),
			HasPackagingOverride: true,
			ReturnCost:           decimal.NewFromInt(20),
			TotalCosts:           decimal.NewFromInt(90),
		}
		err := repo.Save(ctx, db, updated)
		require.NoError(t, err)

		found, err := repo.GetByOrderID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, found.PackagingCost.Equal(decimal.NewFromInt(5)))
		assert.True(t, found.HasPackagingOverride)
		assert.True(t, found.TotalCosts.Equal(decimal.NewFromInt(90)))

		var count int64
		db.Model(&models.OrderCostRecord{}).Where("order_id = ?", 100).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("不存在的订单记录", func(t *testing.T) {
		_, err := repo.GetByOrderID(ctx, 999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
