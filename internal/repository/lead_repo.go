// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// LeadRepository 线索仓储
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository 创建线索仓储
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create 创建线索
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// CreateBatch 批量创建线索
func (r *LeadRepository) CreateBatch(ctx context.Context, leads []*models.Lead) error {
	return r.db.WithContext(ctx).Create(&leads).Error
}

// GetByID 根据 ID 获取线索（租户隔离）
func (r *LeadRepository) GetByID(ctx context.Context, tenantID, id int64) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Batch").
		First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// CountByIDs 统计租户内命中的线索数量
func (r *LeadRepository) CountByIDs(ctx context.Context, tenantID int64, ids []int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Count(&count).Error
	return count, err
}

// CountBoundByIDs 统计已挂接批次的线索数量
func (r *LeadRepository) CountBoundByIDs(ctx context.Context, tenantID int64, ids []int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("tenant_id = ? AND id IN ? AND batch_id IS NOT NULL", tenantID, ids).
		Count(&count).Error
	return count, err
}

// AttachToBatch 把一组线索挂到批次上（弱引用，仅用于成本回查）
func (r *LeadRepository) AttachToBatch(ctx context.Context, tx *gorm.DB, tenantID int64, ids []int64, batchID int64) error {
	return tx.WithContext(ctx).Model(&models.Lead{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Update("batch_id", batchID).Error
}

// List 获取线索列表
func (r *LeadRepository) List(ctx context.Context, tenantID int64, offset, limit int, filters map[string]interface{}) ([]*models.Lead, int64, error) {
	var leads []*models.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Lead{}).Where("tenant_id = ?", tenantID)

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if batchID, ok := filters["batch_id"].(int64); ok && batchID > 0 {
		query = query.Where("batch_id = ?", batchID)
	}
	if assignedTo, ok := filters["assigned_to"].(int64); ok && assignedTo > 0 {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if phone, ok := filters["phone"].(string); ok && phone != "" {
		query = query.Where("phone LIKE ?", "%"+phone+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Batch").
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}
