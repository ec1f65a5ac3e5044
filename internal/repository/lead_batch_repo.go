// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// LeadBatchRepository 线索批次仓储
type LeadBatchRepository struct {
	db *gorm.DB
}

// NewLeadBatchRepository 创建线索批次仓储
func NewLeadBatchRepository(db *gorm.DB) *LeadBatchRepository {
	return &LeadBatchRepository{db: db}
}

// Create 创建批次
func (r *LeadBatchRepository) Create(ctx context.Context, tx *gorm.DB, batch *models.LeadBatch) error {
	return tx.WithContext(ctx).Create(batch).Error
}

// GetByID 根据 ID 获取批次（租户隔离）
func (r *LeadBatchRepository) GetByID(ctx context.Context, tenantID, id int64) (*models.LeadBatch, error) {
	var batch models.LeadBatch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// UpdateCost 修正批次成本，同时写入重新计算后的单条成本
func (r *LeadBatchRepository) UpdateCost(ctx context.Context, tenantID, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.LeadBatch{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(fields).Error
}

// List 获取批次列表
func (r *LeadBatchRepository) List(ctx context.Context, tenantID int64, offset, limit int) ([]*models.LeadBatch, int64, error) {
	var batches []*models.LeadBatch
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LeadBatch{}).Where("tenant_id = ?", tenantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).
		Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

// CountLeads 统计引用该批次的线索数
func (r *LeadBatchRepository) CountLeads(ctx context.Context, batchID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("batch_id = ?", batchID).
		Count(&count).Error
	return count, err
}
