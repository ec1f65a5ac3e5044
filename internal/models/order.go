// Package models 定义数据模型
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单模型
type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`
	TenantID      int64           `gorm:"index;not null" json:"tenant_id"`
	LeadID        *int64          `gorm:"index" json:"lead_id,omitempty"`
	ProductID     int64           `gorm:"index;not null" json:"product_id"`
	AssignedTo    *int64          `gorm:"index" json:"assigned_to,omitempty"`
	CustomerName  string          `gorm:"type:varchar(100);not null;default:''" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(20);not null;default:''" json:"customer_phone"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Status        string          `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	Remark        *string         `gorm:"type:varchar(255)" json:"remark,omitempty"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt     *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	ReturnedAt    *time.Time      `json:"returned_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `gorm:"index;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Lead       *Lead            `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Product    *Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Assignee   *User            `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	CostRecord *OrderCostRecord `gorm:"foreignKey:OrderID" json:"cost_record,omitempty"`
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}

// Revenue 订单收入：售价 × 数量 − 折扣，不为负
func (o *Order) Revenue() decimal.Decimal {
	revenue := o.SellingPrice.Mul(decimal.NewFromInt(int64(o.Quantity))).Sub(o.Discount)
	if revenue.IsNegative() {
		return decimal.Zero
	}
	return revenue
}

// OrderStatus 订单状态
const (
	OrderStatusPending   = "pending"   // 待确认
	OrderStatusConfirmed = "confirmed" // 已确认
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusDelivered = "delivered" // 已签收
	OrderStatusReturned  = "returned"  // 已退货
	OrderStatusCancelled = "cancelled" // 已取消
)

// OrderCostRecord 订单成本记录
// 五项成本及派生的利润字段；total_costs 恒等于五项成本之和，
// 派生字段只由重算流程写入，调用方不得直接改写成本列
type OrderCostRecord struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64           `gorm:"uniqueIndex;not null" json:"order_id"`
	ProductCost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"product_cost"`
	LeadCost             decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"lead_cost"`
	PackagingCost        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"packaging_cost"`
	HasPackagingOverride bool            `gorm:"not null;default:false" json:"has_packaging_override"`
	PrintingCost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"printing_cost"`
	HasPrintingOverride  bool            `gorm:"not null;default:false" json:"has_printing_override"`
	ReturnCost           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"return_cost"`
	TotalCosts           decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"total_costs"`
	GrossProfit          decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"gross_profit"`
	NetProfit            decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"net_profit"`
	ProfitMargin         decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"profit_margin"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (OrderCostRecord) TableName() string {
	return "order_cost_records"
}
