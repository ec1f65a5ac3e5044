// Package profit 成本配置与利润报表 HTTP Handler
package profit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mingyuantech/crm-console-backend/internal/common/cache"
	"github.com/mingyuantech/crm-console-backend/internal/common/handler"
	"github.com/mingyuantech/crm-console-backend/internal/common/response"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	profitService "github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

// reportCacheTTL 报表缓存时长，窗口内订单变动最多延迟这么久可见
const reportCacheTTL = 5 * time.Minute

// reportCacheKey 按租户与查询条件构建报表缓存键
func reportCacheKey(tenantID int64, req *profitService.PeriodReportRequest) string {
	parts := []string{strconv.FormatInt(tenantID, 10), req.Period}
	if req.StartDate != nil {
		parts = append(parts, req.StartDate.Format("20060102"))
	}
	if req.EndDate != nil {
		parts = append(parts, req.EndDate.Format("20060102"))
	}
	if req.ProductID != nil {
		parts = append(parts, "p"+strconv.FormatInt(*req.ProductID, 10))
	}
	if req.UserID != nil {
		parts = append(parts, "u"+strconv.FormatInt(*req.UserID, 10))
	}
	if req.Status != "" {
		parts = append(parts, req.Status)
	}
	return cache.BuildKey(cache.KeyPrefixReport, parts...)
}

// ProfitHandler 利润处理器
type ProfitHandler struct {
	configService *profitService.CostConfigService
	reportService *profitService.ReportService
	exportService *profitService.ExportService
}

// NewProfitHandler 创建利润处理器
func NewProfitHandler(configSvc *profitService.CostConfigService, reportSvc *profitService.ReportService, exportSvc *profitService.ExportService) *ProfitHandler {
	return &ProfitHandler{
		configService: configSvc,
		reportService: reportSvc,
		exportService: exportSvc,
	}
}

// GetDefaultCosts 获取租户默认成本配置
func (h *ProfitHandler) GetDefaultCosts(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	costs, err := h.configService.GetDefaultCosts(c.Request.Context(), tenantID)
	handler.MustSucceed(c, err, costs)
}

// UpdateDefaultCosts 更新租户默认成本配置
// 未提供的字段保持原值，负数整体拒绝
func (h *ProfitHandler) UpdateDefaultCosts(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req profitService.UpdateDefaultCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	costs, err := h.configService.UpdateDefaultCosts(c.Request.Context(), tenantID, &req)
	handler.MustSucceed(c, err, costs)
}

// bindReportQuery 解析报表查询参数
// 失败时已发送400响应，调用方直接 return
func bindReportQuery(c *gin.Context) (*profitService.PeriodReportRequest, bool) {
	start, end, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return nil, false
	}
	productID, ok := handler.ParseQueryID(c, "product_id", "商品")
	if !ok {
		return nil, false
	}
	userID, ok := handler.ParseQueryID(c, "user_id", "用户")
	if !ok {
		return nil, false
	}

	return &profitService.PeriodReportRequest{
		StartDate: start,
		EndDate:   end,
		Period:    c.DefaultQuery("period", profitService.PeriodDaily),
		ProductID: productID,
		UserID:    userID,
		Status:    c.Query("status"),
	}, true
}

// GetProfitReport 周期利润报表
func (h *ProfitHandler) GetProfitReport(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	req, ok := bindReportQuery(c)
	if !ok {
		return
	}

	key := reportCacheKey(tenantID, req)
	if cache.GetClient() != nil {
		var cached models.PeriodProfitReport
		if err := cache.Get(c.Request.Context(), key, &cached); err == nil {
			response.Success(c, &cached)
			return
		}
	}

	report, err := h.reportService.CalculatePeriodProfit(c.Request.Context(), tenantID, req)
	if err != nil {
		handler.HandleError(c, err)
		return
	}

	if cache.GetClient() != nil {
		// 缓存写入失败不影响返回
		_ = cache.Set(c.Request.Context(), key, report, reportCacheTTL)
	}
	response.Success(c, report)
}

// ExportProfitReport 导出订单利润明细CSV
func (h *ProfitHandler) ExportProfitReport(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	req, ok := bindReportQuery(c)
	if !ok {
		return
	}

	exportReq := &profitService.ExportProfitRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Period:    req.Period,
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Status:    req.Status,
	}

	data, filename, err := h.exportService.ExportProfitCSV(c.Request.Context(), tenantID, exportReq)
	if err != nil {
		handler.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
