package profit

import (
	"github.com/shopspring/decimal"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// profitAccumulator 利润拆解的累加器
// 周期报表和导出汇总共用同一份累加逻辑，保证两边口径一致
type profitAccumulator struct {
	summary   models.ProfitSummary
	breakdown models.CostCategoryBreakdown
}

// newProfitAccumulator 创建零值累加器
func newProfitAccumulator() *profitAccumulator {
	return &profitAccumulator{
		summary: models.ProfitSummary{
			TotalRevenue: decimal.Zero,
			TotalCosts:   decimal.Zero,
			NetProfit:    decimal.Zero,
			ProfitMargin: decimal.Zero,
		},
		breakdown: models.CostCategoryBreakdown{
			ProductCosts:   decimal.Zero,
			LeadCosts:      decimal.Zero,
			PackagingCosts: decimal.Zero,
			PrintingCosts:  decimal.Zero,
			ReturnCosts:    decimal.Zero,
		},
	}
}

// add 累加一笔订单的利润拆解
func (a *profitAccumulator) add(b *models.ProfitBreakdown) {
	a.summary.TotalRevenue = a.summary.TotalRevenue.Add(b.Revenue)
	a.summary.TotalCosts = a.summary.TotalCosts.Add(b.Costs.Total)
	a.summary.NetProfit = a.summary.NetProfit.Add(b.NetProfit)
	a.summary.OrderCount++
	if b.IsReturn {
		a.summary.ReturnCount++
	}

	a.breakdown.ProductCosts = a.breakdown.ProductCosts.Add(b.Costs.Product)
	a.breakdown.LeadCosts = a.breakdown.LeadCosts.Add(b.Costs.Lead)
	a.breakdown.PackagingCosts = a.breakdown.PackagingCosts.Add(b.Costs.Packaging)
	a.breakdown.PrintingCosts = a.breakdown.PrintingCosts.Add(b.Costs.Printing)
	a.breakdown.ReturnCosts = a.breakdown.ReturnCosts.Add(b.Costs.Return)
}

// result 收口：补算整体利润率后返回汇总与分类合计
// 收入为 0 时利润率恒为 0
func (a *profitAccumulator) result() (models.ProfitSummary, models.CostCategoryBreakdown) {
	if a.summary.TotalRevenue.IsPositive() {
		a.summary.ProfitMargin = a.summary.NetProfit.
			Div(a.summary.TotalRevenue).
			Mul(hundred).
			Round(2)
	}
	return a.summary, a.breakdown
}
