package lead

import (
	"github.com/gin-gonic/gin"

	"github.com/mingyuantech/crm-console-backend/internal/common/handler"
	"github.com/mingyuantech/crm-console-backend/internal/common/response"
	leadService "github.com/mingyuantech/crm-console-backend/internal/service/lead"
)

// LeadHandler 线索处理器
type LeadHandler struct {
	leadService *leadService.LeadService
}

// NewLeadHandler 创建线索处理器
func NewLeadHandler(leadSvc *leadService.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadSvc}
}

// CreateLead 创建线索
func (h *LeadHandler) CreateLead(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req leadService.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), tenantID, &req)
	handler.MustSucceed(c, err, lead)
}

// GetLead 获取线索详情
func (h *LeadHandler) GetLead(c *gin.Context) {
	tenantID, leadID, ok := handler.RequireTenantAndParseID(c, "线索")
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(c.Request.Context(), tenantID, leadID)
	handler.MustSucceed(c, err, lead)
}

// ListLeads 获取线索列表
func (h *LeadHandler) ListLeads(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req leadService.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	leads, total, err := h.leadService.ListLeads(c.Request.Context(), tenantID, &req)
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	handler.MustSucceedPage(c, err, leads, total, page, pageSize)
}
