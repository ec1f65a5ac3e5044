// Package models 定义数据模型
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant 租户模型
type Tenant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Status    int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Tenant) TableName() string {
	return "tenants"
}

// TenantStatus 租户状态
const (
	TenantStatusDisabled = 0 // 禁用
	TenantStatusActive   = 1 // 启用
)

// TenantCostConfig 租户成本默认配置
// 惰性创建：首次写入时建行，读取不存在的配置返回全零默认值
type TenantCostConfig struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID             int64           `gorm:"uniqueIndex;not null" json:"tenant_id"`
	DefaultPackagingCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"default_packaging_cost"`
	DefaultPrintingCost  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"default_printing_cost"`
	DefaultReturnCost    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"default_return_cost"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (TenantCostConfig) TableName() string {
	return "tenant_cost_configs"
}

// DefaultCosts 租户默认成本（对外返回结构）
type DefaultCosts struct {
	PackagingCost decimal.Decimal `json:"packaging_cost"`
	PrintingCost  decimal.Decimal `json:"printing_cost"`
	ReturnCost    decimal.Decimal `json:"return_cost"`
}
