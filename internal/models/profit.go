// Package models 定义数据模型
package models

import (
	"github.com/shopspring/decimal"
)

// CostBreakdown 单笔订单的成本拆分
type CostBreakdown struct {
	Product   decimal.Decimal `json:"product"`
	Lead      decimal.Decimal `json:"lead"`
	Packaging decimal.Decimal `json:"packaging"`
	Printing  decimal.Decimal `json:"printing"`
	Return    decimal.Decimal `json:"return"`
	Total     decimal.Decimal `json:"total"`
}

// ProfitBreakdown 单笔订单的利润拆解（派生结构，不落库）
type ProfitBreakdown struct {
	OrderID      int64           `json:"order_id"`
	Revenue      decimal.Decimal `json:"revenue"`
	Costs        CostBreakdown   `json:"costs"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	IsReturn     bool            `json:"is_return"`
}

// ProfitSummary 周期利润汇总
type ProfitSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCosts   decimal.Decimal `json:"total_costs"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	OrderCount   int             `json:"order_count"`
	ReturnCount  int             `json:"return_count"`
}

// CostCategoryBreakdown 周期内各成本分类的合计
type CostCategoryBreakdown struct {
	ProductCosts   decimal.Decimal `json:"product_costs"`
	LeadCosts      decimal.Decimal `json:"lead_costs"`
	PackagingCosts decimal.Decimal `json:"packaging_costs"`
	PrintingCosts  decimal.Decimal `json:"printing_costs"`
	ReturnCosts    decimal.Decimal `json:"return_costs"`
}

// ProfitTrendPoint 趋势桶：按日/周/月聚合的一个时间点
type ProfitTrendPoint struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	Costs      decimal.Decimal `json:"costs"`
	Profit     decimal.Decimal `json:"profit"`
	OrderCount int             `json:"order_count"`
}

// ReportPeriod 报表周期
type ReportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PeriodProfitReport 周期利润报表
type PeriodProfitReport struct {
	Period    ReportPeriod          `json:"period"`
	Summary   ProfitSummary         `json:"summary"`
	Breakdown CostCategoryBreakdown `json:"breakdown"`
	Trends    []ProfitTrendPoint    `json:"trends"`
}

// OrderExportRow 订单利润导出行（各导出格式共用同一列模型）
type OrderExportRow struct {
	OrderID       int64           `json:"order_id"`
	OrderNo       string          `json:"order_no"`
	OrderDate     string          `json:"order_date"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Discount      decimal.Decimal `json:"discount"`
	Revenue       decimal.Decimal `json:"revenue"`
	ProductCost   decimal.Decimal `json:"product_cost"`
	LeadCost      decimal.Decimal `json:"lead_cost"`
	PackagingCost decimal.Decimal `json:"packaging_cost"`
	PrintingCost  decimal.Decimal `json:"printing_cost"`
	ReturnCost    decimal.Decimal `json:"return_cost"`
	TotalCosts    decimal.Decimal `json:"total_costs"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
	Status        string          `json:"status"`
	AssignedTo    string          `json:"assigned_to"`
	IsReturn      bool            `json:"is_return"`
}

// ExportSummary 导出汇总（与周期汇总同源计算，不重复实现算术）
type ExportSummary struct {
	Summary   ProfitSummary         `json:"summary"`
	Breakdown CostCategoryBreakdown `json:"breakdown"`
}
