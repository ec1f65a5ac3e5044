// Package lead 线索与导入批次 HTTP Handler
package lead

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mingyuantech/crm-console-backend/internal/common/handler"
	"github.com/mingyuantech/crm-console-backend/internal/common/response"
	leadService "github.com/mingyuantech/crm-console-backend/internal/service/lead"
)

// BatchHandler 线索批次处理器
type BatchHandler struct {
	batchService *leadService.BatchService
}

// NewBatchHandler 创建线索批次处理器
func NewBatchHandler(batchSvc *leadService.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchSvc}
}

// CreateBatch 创建导入批次并摊派线索成本
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req leadService.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	userID := c.GetInt64("user_id")
	batch, err := h.batchService.CreateBatch(c.Request.Context(), tenantID, userID, &req)
	handler.MustSucceed(c, err, batch)
}

// CorrectBatchCost 修正批次总成本并重算单线索均摊
func (h *BatchHandler) CorrectBatchCost(c *gin.Context) {
	tenantID, batchID, ok := handler.RequireTenantAndParseID(c, "批次")
	if !ok {
		return
	}

	var req struct {
		TotalCost decimal.Decimal `json:"total_cost" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供批次总成本")
		return
	}

	batch, err := h.batchService.CorrectBatchCost(c.Request.Context(), tenantID, batchID, req.TotalCost)
	handler.MustSucceed(c, err, batch)
}

// GetBatch 获取批次详情
func (h *BatchHandler) GetBatch(c *gin.Context) {
	tenantID, batchID, ok := handler.RequireTenantAndParseID(c, "批次")
	if !ok {
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), tenantID, batchID)
	handler.MustSucceed(c, err, batch)
}

// ListBatches 获取批次列表
func (h *BatchHandler) ListBatches(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	batches, total, err := h.batchService.ListBatches(c.Request.Context(), tenantID, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, batches, total, p.Page, p.PageSize)
}
