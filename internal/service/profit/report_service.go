package profit

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/common/metrics"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// 报表周期粒度
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodCustom  = "custom"
)

// 缺省统计窗口
const (
	defaultDailyDays    = 30
	defaultWeeklyWeeks  = 12
	defaultMonthlyMonth = 12
)

// reportBatchSize 报表订单遍历批大小
const reportBatchSize = 500

// dateLayout 报表日期格式
const dateLayout = "2006-01-02"

// PeriodReportRequest 周期利润报表请求
type PeriodReportRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Period    string
	ProductID *int64
	UserID    *int64
	Status    string
}

// ReportService 周期利润报表服务
// 订单按批流式折叠进汇总、分类合计与趋势桶，单笔订单计算失败
// 记日志后剔除，不影响整张报表
type ReportService struct {
	orderRepo  *repository.OrderRepository
	calculator *Calculator
	configSvc  *CostConfigService
}

// NewReportService 创建报表服务
func NewReportService(orderRepo *repository.OrderRepository, calculator *Calculator, configSvc *CostConfigService) *ReportService {
	return &ReportService{
		orderRepo:  orderRepo,
		calculator: calculator,
		configSvc:  configSvc,
	}
}

// CalculatePeriodProfit 计算周期利润报表
func (s *ReportService) CalculatePeriodProfit(ctx context.Context, tenantID int64, req *PeriodReportRequest) (*models.PeriodProfitReport, error) {
	began := time.Now()
	start, end, granularity := resolveWindow(req, began)

	defaults, err := s.configSvc.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	filter := &repository.ProfitOrderFilter{
		StartDate: start,
		EndDate:   end,
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Status:    req.Status,
	}

	acc := newProfitAccumulator()
	buckets := make(map[string]*models.ProfitTrendPoint)

	err = s.orderRepo.ForEachForProfit(ctx, tenantID, filter, reportBatchSize, func(orders []*models.Order) error {
		for _, order := range orders {
			breakdown, err := s.calculator.BreakdownFromLoaded(order, defaults)
			if err != nil {
				code := CalcErrCalculationFailed
				if ce, ok := AsProfitCalculationError(err); ok {
					code = ce.Code
				}
				logger.Warn("报表剔除无法计算的订单",
					logger.TenantID(tenantID),
					logger.OrderID(order.ID),
					zap.String("code", code))
				continue
			}

			acc.add(breakdown)

			key := bucketKey(order.CreatedAt, granularity)
			point, ok := buckets[key]
			if !ok {
				point = &models.ProfitTrendPoint{
					Date:    key,
					Revenue: decimal.Zero,
					Costs:   decimal.Zero,
					Profit:  decimal.Zero,
				}
				buckets[key] = point
			}
			point.Revenue = point.Revenue.Add(breakdown.Revenue)
			point.Costs = point.Costs.Add(breakdown.Costs.Total)
			point.Profit = point.Profit.Add(breakdown.NetProfit)
			point.OrderCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary, categoryBreakdown := acc.result()

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	trends := make([]models.ProfitTrendPoint, 0, len(keys))
	for _, key := range keys {
		trends = append(trends, *buckets[key])
	}

	metrics.RecordProfitReportGlobal(granularity, time.Since(began))

	return &models.PeriodProfitReport{
		Period: models.ReportPeriod{
			Start: start.Format(dateLayout),
			End:   end.Format(dateLayout),
		},
		Summary:   summary,
		Breakdown: categoryBreakdown,
		Trends:    trends,
	}, nil
}

// resolveWindow 解析统计窗口与趋势粒度
// 起止齐全时按请求区间统计，否则按粒度取缺省窗口：
// 日报近 30 天、周报近 12 个 ISO 周、月报近 12 个月；
// custom 未给全起止时退化为日粒度近 30 天
func resolveWindow(req *PeriodReportRequest, now time.Time) (time.Time, time.Time, string) {
	granularity := req.Period
	switch granularity {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	case PeriodCustom:
		// custom 的趋势桶按日聚合
		granularity = PeriodDaily
	default:
		granularity = PeriodDaily
	}

	if req.StartDate != nil && req.EndDate != nil {
		return dayStart(*req.StartDate), dayEnd(*req.EndDate), granularity
	}

	end := dayEnd(now)
	var start time.Time
	switch granularity {
	case PeriodWeekly:
		start = dayStart(mondayOf(now).AddDate(0, 0, -7*(defaultWeeklyWeeks-1)))
	case PeriodMonthly:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start = firstOfMonth.AddDate(0, -(defaultMonthlyMonth - 1), 0)
	default:
		start = dayStart(now.AddDate(0, 0, -(defaultDailyDays - 1)))
	}
	return start, end, granularity
}

// bucketKey 趋势桶键
// 日粒度取日期、周粒度取所在 ISO 周的周一、月粒度取年月
func bucketKey(t time.Time, granularity string) string {
	switch granularity {
	case PeriodWeekly:
		return mondayOf(t).Format(dateLayout)
	case PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format(dateLayout)
	}
}

// mondayOf 所在 ISO 周的周一
func mondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return dayStart(t.AddDate(0, 0, -(weekday - 1)))
}

// dayStart 当日零点
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayEnd 当日末尾
func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
