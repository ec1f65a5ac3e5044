// Package models 定义数据模型
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品模型
type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  int64           `gorm:"index;not null" json:"tenant_id"`
	Name      string          `gorm:"type:varchar(200);not null" json:"name"`
	SKU       string          `gorm:"type:varchar(64);not null;default:''" json:"sku"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	Status    int8            `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Product) TableName() string {
	return "products"
}

// ProductStatus 商品状态
const (
	ProductStatusOffShelf = 0 // 下架
	ProductStatusOnShelf  = 1 // 上架
)
