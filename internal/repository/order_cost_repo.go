// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// OrderCostRepository 订单成本记录仓储
type OrderCostRepository struct {
	db *gorm.DB
}

// NewOrderCostRepository 创建订单成本记录仓储
func NewOrderCostRepository(db *gorm.DB) *OrderCostRepository {
	return &OrderCostRepository{db: db}
}

// Create 创建成本记录
func (r *OrderCostRepository) Create(ctx context.Context, tx *gorm.DB, record *models.OrderCostRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

// GetByOrderID 根据订单 ID 获取成本记录
func (r *OrderCostRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.OrderCostRecord, error) {
	var record models.OrderCostRecord
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Save 按订单覆盖成本记录（不存在则创建）
func (r *OrderCostRepository) Save(ctx context.Context, tx *gorm.DB, record *models.OrderCostRecord) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_cost", "lead_cost",
			"packaging_cost", "has_packaging_override",
			"printing_cost", "has_printing_override",
			"return_cost",
			"total_costs", "gross_profit", "net_profit", "profit_margin",
			"updated_at",
		}),
	}).Create(record).Error
}
