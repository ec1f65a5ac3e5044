// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// CostConfigRepository 租户成本配置仓储
type CostConfigRepository struct {
	db *gorm.DB
}

// NewCostConfigRepository 创建租户成本配置仓储
func NewCostConfigRepository(db *gorm.DB) *CostConfigRepository {
	return &CostConfigRepository{db: db}
}

// GetByTenant 获取租户成本配置，不存在时返回 gorm.ErrRecordNotFound
func (r *CostConfigRepository) GetByTenant(ctx context.Context, tenantID int64) (*models.TenantCostConfig, error) {
	var config models.TenantCostConfig
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Upsert 按租户写入配置（不存在则创建）
func (r *CostConfigRepository) Upsert(ctx context.Context, config *models.TenantCostConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"default_packaging_cost", "default_printing_cost", "default_return_cost", "updated_at",
		}),
	}).Create(config).Error
}
