// Package order 订单 HTTP Handler
package order

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mingyuantech/crm-console-backend/internal/common/handler"
	"github.com/mingyuantech/crm-console-backend/internal/common/response"
	orderService "github.com/mingyuantech/crm-console-backend/internal/service/order"
	profitService "github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	orderService  *orderService.OrderService
	statusService *orderService.StatusService
	calculator    *profitService.Calculator
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(orderSvc *orderService.OrderService, statusSvc *orderService.StatusService, calculator *profitService.Calculator) *OrderHandler {
	return &OrderHandler{
		orderService:  orderSvc,
		statusService: statusSvc,
		calculator:    calculator,
	}
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req orderService.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), tenantID, &req)
	handler.MustSucceed(c, err, order)
}

// GetOrder 获取订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	tenantID, orderID, ok := handler.RequireTenantAndParseID(c, "订单")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), tenantID, orderID)
	handler.MustSucceed(c, err, order)
}

// ListOrders 获取订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req orderService.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), tenantID, &req)
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	handler.MustSucceedPage(c, err, orders, total, page, pageSize)
}

// changeStatusRequest 状态流转请求
type changeStatusRequest struct {
	Status     string           `json:"status" binding:"required"`
	ReturnCost *decimal.Decimal `json:"return_cost"`
}

// ChangeStatus 订单状态流转
// 流转到已退货时接受可选退货成本，流转后同事务内重算利润
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	tenantID, orderID, ok := handler.RequireTenantAndParseID(c, "订单")
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供目标状态")
		return
	}

	breakdown, err := h.statusService.ChangeStatus(c.Request.Context(), tenantID, orderID, req.Status, req.ReturnCost)
	handler.MustSucceed(c, err, breakdown)
}

// GetProfit 获取订单利润拆解
func (h *OrderHandler) GetProfit(c *gin.Context) {
	tenantID, orderID, ok := handler.RequireTenantAndParseID(c, "订单")
	if !ok {
		return
	}

	breakdown, err := h.calculator.CalculateOrderProfit(c.Request.Context(), tenantID, orderID)
	handler.MustSucceed(c, err, breakdown)
}

// UpdateCosts 手工修正订单成本
func (h *OrderHandler) UpdateCosts(c *gin.Context) {
	tenantID, orderID, ok := handler.RequireTenantAndParseID(c, "订单")
	if !ok {
		return
	}

	var req profitService.ManualCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	breakdown, err := h.calculator.UpdateOrderCostsManually(c.Request.Context(), tenantID, orderID, &req)
	handler.MustSucceed(c, err, breakdown)
}
