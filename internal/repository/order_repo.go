// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// OrderRepository 订单仓储
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// DB 返回底层数据库句柄（用于服务层开启事务）
func (r *OrderRepository) DB() *gorm.DB {
	return r.db
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// GetByID 根据 ID 获取订单（租户隔离）
func (r *OrderRepository) GetByID(ctx context.Context, tenantID, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDForProfit 根据 ID 获取订单及利润计算所需的全部关联
func (r *OrderRepository) GetByIDForProfit(ctx context.Context, tenantID, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Product").
		Preload("Lead.Batch").
		Preload("CostRecord").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDForProfitTx 在事务内获取订单及利润计算所需的全部关联
func (r *OrderRepository) GetByIDForProfitTx(ctx context.Context, tx *gorm.DB, tenantID, id int64) (*models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Product").
		Preload("Lead.Batch").
		Preload("CostRecord").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetForUpdate 获取订单（加行锁，需在事务内调用）
func (r *OrderRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, tenantID, id int64) (*models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("tenant_id = ?", tenantID).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateFields 更新指定字段
func (r *OrderRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	return tx.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

// ProfitOrderFilter 利润报表/导出订单过滤条件
type ProfitOrderFilter struct {
	StartDate time.Time
	EndDate   time.Time
	ProductID *int64
	UserID    *int64
	Status    string
}

// profitQuery 按过滤条件构造报表查询
func (r *OrderRepository) profitQuery(ctx context.Context, tenantID int64, f *ProfitOrderFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("tenant_id = ?", tenantID).
		Where("created_at >= ? AND created_at <= ?", f.StartDate, f.EndDate)

	if f.ProductID != nil {
		query = query.Where("product_id = ?", *f.ProductID)
	}
	if f.UserID != nil {
		query = query.Where("assigned_to = ?", *f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	return query
}

// ForEachForProfit 按批遍历报表区间内的订单，携带利润计算所需关联
// 分批加载避免一次性物化大报表的全部订单
func (r *OrderRepository) ForEachForProfit(ctx context.Context, tenantID int64, f *ProfitOrderFilter, batchSize int, fn func(orders []*models.Order) error) error {
	var batch []*models.Order
	return r.profitQuery(ctx, tenantID, f).
		Preload("Product").
		Preload("Lead.Batch").
		Preload("CostRecord").
		Order("created_at ASC").
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

// ListForExport 加载导出区间内的订单，按创建时间倒序并携带展示关联
func (r *OrderRepository) ListForExport(ctx context.Context, tenantID int64, f *ProfitOrderFilter, limit int) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.profitQuery(ctx, tenantID, f).
		Preload("Product").
		Preload("Lead.Batch").
		Preload("Assignee").
		Preload("CostRecord").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// List 获取订单列表（管理端）
func (r *OrderRepository) List(ctx context.Context, tenantID int64, offset, limit int, filters map[string]interface{}) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("tenant_id = ?", tenantID)

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if productID, ok := filters["product_id"].(int64); ok && productID > 0 {
		query = query.Where("product_id = ?", productID)
	}
	if assignedTo, ok := filters["assigned_to"].(int64); ok && assignedTo > 0 {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if orderNo, ok := filters["order_no"].(string); ok && orderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+orderNo+"%")
	}
	if startDate, ok := filters["start_date"].(time.Time); ok {
		query = query.Where("created_at >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(time.Time); ok {
		query = query.Where("created_at <= ?", endDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Product").Preload("CostRecord").
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetExpiredPending 获取超时未确认的待处理订单
func (r *OrderRepository) GetExpiredPending(ctx context.Context, before time.Time, limit int) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", models.OrderStatusPending).
		Where("created_at < ?", before).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
