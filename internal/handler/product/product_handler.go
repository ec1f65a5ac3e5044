// Package product 商品 HTTP Handler
package product

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mingyuantech/crm-console-backend/internal/common/handler"
	"github.com/mingyuantech/crm-console-backend/internal/common/response"
	productService "github.com/mingyuantech/crm-console-backend/internal/service/product"
)

// ProductHandler 商品处理器
type ProductHandler struct {
	productService *productService.ProductService
}

// NewProductHandler 创建商品处理器
func NewProductHandler(productSvc *productService.ProductService) *ProductHandler {
	return &ProductHandler{productService: productSvc}
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req productService.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), tenantID, &req)
	handler.MustSucceed(c, err, product)
}

// GetProduct 获取商品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	tenantID, productID, ok := handler.RequireTenantAndParseID(c, "商品")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), tenantID, productID)
	handler.MustSucceed(c, err, product)
}

// UpdateProduct 更新商品
// 成本价变更只影响之后的利润计算，历史订单不回溯
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	tenantID, productID, ok := handler.RequireTenantAndParseID(c, "商品")
	if !ok {
		return
	}

	var req productService.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), tenantID, productID, &req)
	handler.MustSucceed(c, err, product)
}

// ListProducts 获取商品列表
func (h *ProductHandler) ListProducts(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)

	var status *int8
	if statusStr := c.Query("status"); statusStr != "" {
		v, err := strconv.ParseInt(statusStr, 10, 8)
		if err != nil {
			response.BadRequest(c, "无效的状态参数")
			return
		}
		s := int8(v)
		status = &s
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), tenantID, p.Page, p.PageSize, status)
	handler.MustSucceedPage(c, err, products, total, p.Page, p.PageSize)
}
