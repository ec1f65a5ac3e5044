// Package models 定义数据模型
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeadBatch 线索批次
// 一次批量导入的线索共享一笔采购成本，按条均摊；
// cost_per_lead 在创建时计算并固化，后续读取不再重新计算
type LeadBatch struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    int64           `gorm:"index;not null" json:"tenant_id"`
	Name        string          `gorm:"type:varchar(100);not null;default:''" json:"name"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_cost"`
	LeadCount   int             `gorm:"not null" json:"lead_count"`
	CostPerLead decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"cost_per_lead"`
	ImportedBy  int64           `gorm:"not null" json:"imported_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (LeadBatch) TableName() string {
	return "lead_batches"
}

// Lead 线索模型
// 线索本身不带成本字段，成本通过所属批次的 cost_per_lead 推导
type Lead struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64     `gorm:"index;not null" json:"tenant_id"`
	BatchID    *int64    `gorm:"index" json:"batch_id,omitempty"`
	Name       string    `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Phone      string    `gorm:"type:varchar(20);not null;default:''" json:"phone"`
	Source     string    `gorm:"type:varchar(50);not null;default:''" json:"source"`
	AssignedTo *int64    `gorm:"index" json:"assigned_to,omitempty"`
	Status     string    `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Batch    *LeadBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	Assignee *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

// TableName 表名
func (Lead) TableName() string {
	return "leads"
}

// LeadStatus 线索状态
const (
	LeadStatusNew       = "new"       // 新线索
	LeadStatusFollowing = "following" // 跟进中
	LeadStatusConverted = "converted" // 已成单
	LeadStatusInvalid   = "invalid"   // 无效
)
