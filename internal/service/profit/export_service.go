package profit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/common/metrics"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// exportOrderLimit 单次导出订单上限
const exportOrderLimit = 50000

// ExportService 利润报表导出服务
type ExportService struct {
	orderRepo  *repository.OrderRepository
	calculator *Calculator
	configSvc  *CostConfigService
}

// NewExportService 创建导出服务
func NewExportService(orderRepo *repository.OrderRepository, calculator *Calculator, configSvc *CostConfigService) *ExportService {
	return &ExportService{
		orderRepo:  orderRepo,
		calculator: calculator,
		configSvc:  configSvc,
	}
}

// ExportProfitRequest 利润导出请求
type ExportProfitRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Period    string
	ProductID *int64
	UserID    *int64
	Status    string
}

// BuildExportRows 把订单与利润拆解摊平成导出行
// 两个切片按下标一一对应，行序与入参一致
func (s *ExportService) BuildExportRows(orders []*models.Order, breakdowns []*models.ProfitBreakdown) []models.OrderExportRow {
	rows := make([]models.OrderExportRow, 0, len(orders))
	for i, order := range orders {
		b := breakdowns[i]

		productName := ""
		if order.Product != nil {
			productName = order.Product.Name
		}
		assignedTo := ""
		if order.Assignee != nil {
			assignedTo = order.Assignee.Username
		}

		rows = append(rows, models.OrderExportRow{
			OrderID:       order.ID,
			OrderNo:       order.OrderNo,
			OrderDate:     order.CreatedAt.Format("2006-01-02 15:04:05"),
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			ProductName:   productName,
			Quantity:      order.Quantity,
			SellingPrice:  order.SellingPrice,
			Discount:      order.Discount,
			Revenue:       b.Revenue,
			ProductCost:   b.Costs.Product,
			LeadCost:      b.Costs.Lead,
			PackagingCost: b.Costs.Packaging,
			PrintingCost:  b.Costs.Printing,
			ReturnCost:    b.Costs.Return,
			TotalCosts:    b.Costs.Total,
			GrossProfit:   b.GrossProfit,
			NetProfit:     b.NetProfit,
			ProfitMargin:  b.ProfitMargin,
			Status:        order.Status,
			AssignedTo:    assignedTo,
			IsReturn:      b.IsReturn,
		})
	}
	return rows
}

// BuildExportSummary 由利润拆解集合计算导出汇总
// 与周期报表走同一个累加器，两边口径必然一致
func (s *ExportService) BuildExportSummary(breakdowns []*models.ProfitBreakdown) *models.ExportSummary {
	acc := newProfitAccumulator()
	for _, b := range breakdowns {
		acc.add(b)
	}
	summary, breakdown := acc.result()
	return &models.ExportSummary{Summary: summary, Breakdown: breakdown}
}

// ExportProfitCSV 导出订单利润明细为 CSV
// 明细行之后空一行输出汇总块；区间内没有订单时明细处输出占位行，
// 汇总块仍然带出（全零）
func (s *ExportService) ExportProfitCSV(ctx context.Context, tenantID int64, req *ExportProfitRequest) ([]byte, string, error) {
	start, end, _ := resolveWindow(&PeriodReportRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Period:    req.Period,
	}, time.Now())

	filter := &repository.ProfitOrderFilter{
		StartDate: start,
		EndDate:   end,
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Status:    req.Status,
	}
	orders, err := s.orderRepo.ListForExport(ctx, tenantID, filter, exportOrderLimit)
	if err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}

	defaults, err := s.configSvc.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}

	// 逐单计算，算不动的记日志剔除，与报表口径一致
	kept := make([]*models.Order, 0, len(orders))
	breakdowns := make([]*models.ProfitBreakdown, 0, len(orders))
	for _, order := range orders {
		breakdown, err := s.calculator.BreakdownFromLoaded(order, defaults)
		if err != nil {
			code := CalcErrCalculationFailed
			if ce, ok := AsProfitCalculationError(err); ok {
				code = ce.Code
			}
			logger.Warn("导出剔除无法计算的订单",
				logger.TenantID(tenantID),
				logger.OrderID(order.ID),
				zap.String("code", code))
			continue
		}
		kept = append(kept, order)
		breakdowns = append(breakdowns, breakdown)
	}

	rows := s.BuildExportRows(kept, breakdowns)
	exportSummary := s.BuildExportSummary(breakdowns)

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(buf)

	// 写入表头
	headers := []string{
		"订单ID", "订单号", "下单时间", "客户姓名", "客户电话", "商品名称", "数量",
		"售价", "折扣", "收入", "商品成本", "线索成本", "打包成本", "打印成本",
		"退货成本", "总成本", "毛利", "净利润", "利润率", "状态", "负责人", "是否退货",
	}
	if err := writer.Write(headers); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}

	// 写入数据
	if len(rows) == 0 {
		if err := writer.Write([]string{"暂无数据"}); err != nil {
			return nil, "", errors.ErrExportFailed.WithError(err)
		}
	}
	for _, r := range rows {
		isReturn := "否"
		if r.IsReturn {
			isReturn = "是"
		}

		row := []string{
			fmt.Sprintf("%d", r.OrderID),
			r.OrderNo,
			r.OrderDate,
			r.CustomerName,
			r.CustomerPhone,
			r.ProductName,
			fmt.Sprintf("%d", r.Quantity),
			r.SellingPrice.StringFixed(2),
			r.Discount.StringFixed(2),
			r.Revenue.StringFixed(2),
			r.ProductCost.StringFixed(2),
			r.LeadCost.StringFixed(2),
			r.PackagingCost.StringFixed(2),
			r.PrintingCost.StringFixed(2),
			r.ReturnCost.StringFixed(2),
			r.TotalCosts.StringFixed(2),
			r.GrossProfit.StringFixed(2),
			r.NetProfit.StringFixed(2),
			r.ProfitMargin.StringFixed(2) + "%",
			getOrderStatusName(r.Status),
			r.AssignedTo,
			isReturn,
		}
		if err := writer.Write(row); err != nil {
			return nil, "", errors.ErrExportFailed.WithError(err)
		}
	}

	// 空一行后写入汇总块
	if err := writer.Write([]string{}); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}
	summaryRows := [][]string{
		{"汇总"},
		{"总收入", exportSummary.Summary.TotalRevenue.StringFixed(2)},
		{"总成本", exportSummary.Summary.TotalCosts.StringFixed(2)},
		{"净利润", exportSummary.Summary.NetProfit.StringFixed(2)},
		{"利润率", exportSummary.Summary.ProfitMargin.StringFixed(2) + "%"},
		{"订单数", fmt.Sprintf("%d", exportSummary.Summary.OrderCount)},
		{"退货数", fmt.Sprintf("%d", exportSummary.Summary.ReturnCount)},
		{"商品成本合计", exportSummary.Breakdown.ProductCosts.StringFixed(2)},
		{"线索成本合计", exportSummary.Breakdown.LeadCosts.StringFixed(2)},
		{"打包成本合计", exportSummary.Breakdown.PackagingCosts.StringFixed(2)},
		{"打印成本合计", exportSummary.Breakdown.PrintingCosts.StringFixed(2)},
		{"退货成本合计", exportSummary.Breakdown.ReturnCosts.StringFixed(2)},
	}
	for _, row := range summaryRows {
		if err := writer.Write(row); err != nil {
			return nil, "", errors.ErrExportFailed.WithError(err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", errors.ErrExportFailed.WithError(err)
	}

	metrics.RecordExportGlobal("csv")
	filename := fmt.Sprintf("profit_orders_%s.csv", time.Now().Format("20060102150405"))
	return buf.Bytes(), filename, nil
}

// 辅助函数：获取订单状态名称
func getOrderStatusName(status string) string {
	switch status {
	case models.OrderStatusPending:
		return "待确认"
	case models.OrderStatusConfirmed:
		return "已确认"
	case models.OrderStatusShipped:
		return "已发货"
	case models.OrderStatusDelivered:
		return "已签收"
	case models.OrderStatusReturned:
		return "已退货"
	case models.OrderStatusCancelled:
		return "已取消"
	default:
		return status
	}
}
