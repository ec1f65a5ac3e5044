// Package profit 成本配置服务单元测试
package profit

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

func TestCostConfigService_GetDefaultCosts(t *testing.T) {
	db := setupProfitTestDB(t)
	svc := NewCostConfigService(repository.NewCostConfigRepository(db))
	ctx := context.Background()

	t.Run("未配置时返回全零", func(t *testing.T) {
		costs, err := svc.GetDefaultCosts(ctx, 1)
		require.NoError(t, err)
		assert.True(t, costs.PackagingCost.Equal(decimal.Zero))
		assert.True(t, costs.PrintingCost.Equal(decimal.Zero))
		assert.True(t, costs.ReturnCost.Equal(decimal.Zero))
	})

	t.Run("已配置时返回配置值", func(t *testing.T) {
		require.NoError(t, db.Create(&models.TenantCostConfig{
			TenantID:             2,
			DefaultPackagingCost: dec("5"),
			DefaultPrintingCost:  dec("1"),
			DefaultReturnCost:    dec("20"),
		}).Error)

		costs, err := svc.GetDefaultCosts(ctx, 2)
		require.NoError(t, err)
		assert.True(t, costs.PackagingCost.Equal(dec("5")))
		assert.True(t, costs.ReturnCost.Equal(dec("20")))
	})
}

func TestCostConfigService_UpdateDefaultCosts(t *testing.T) {
	db := setupProfitTestDB(t)
	svc := NewCostConfigService(repository.NewCostConfigRepository(db))
	ctx := context.Background()

	t.Run("首次更新惰性建行", func(t *testing.T) {
		costs, err := svc.UpdateDefaultCosts(ctx, 1, &UpdateDefaultCostsRequest{
			PackagingCost: decPtr("5"),
			ReturnCost:    decPtr("20"),
		})
		require.NoError(t, err)
		assert.True(t, costs.PackagingCost.Equal(dec("5")))
		assert.True(t, costs.PrintingCost.Equal(decimal.Zero))
		assert.True(t, costs.ReturnCost.Equal(dec("20")))
	})

	t.Run("未提供字段保持原值", func(t *testing.T) {
		costs, err := svc.UpdateDefaultCosts(ctx, 1, &UpdateDefaultCostsRequest{
			PrintingCost: decPtr("1.5"),
		})
		require.NoError(t, err)
		assert.True(t, costs.PackagingCost.Equal(dec("5")))
		assert.True(t, costs.PrintingCost.Equal(dec("1.5")))
		assert.True(t, costs.ReturnCost.Equal(dec("20")))
	})

	t.Run("负数整体拒绝", func(t *testing.T) {
		_, err := svc.UpdateDefaultCosts(ctx, 1, &UpdateDefaultCostsRequest{
			PackagingCost: decPtr("-1"),
			ReturnCost:    decPtr("-2"),
		})
		require.Error(t, err)
		ve, ok := AsCostValidationError(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"packaging_cost", "return_cost"}, ve.Fields)

		// 拒绝后原配置不变
		costs, err := svc.GetDefaultCosts(ctx, 1)
		require.NoError(t, err)
		assert.True(t, costs.PackagingCost.Equal(dec("5")))
	})

	t.Run("零值合法", func(t *testing.T) {
		costs, err := svc.UpdateDefaultCosts(ctx, 1, &UpdateDefaultCostsRequest{
			PackagingCost: decPtr("0"),
		})
		require.NoError(t, err)
		assert.True(t, costs.PackagingCost.Equal(decimal.Zero))
	})

	t.Run("租户之间互不影响", func(t *testing.T) {
		_, err := svc.UpdateDefaultCosts(ctx, 9, &UpdateDefaultCostsRequest{
			PackagingCost: decPtr("100"),
		})
		require.NoError(t, err)

		costs, err := svc.GetDefaultCosts(ctx, 1)
		require.NoError(t, err)
		assert.False(t, costs.PackagingCost.Equal(dec("100")))
	})
}
