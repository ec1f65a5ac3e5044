// Package auth 认证 HTTP Handler
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/mingyuantech/crm-console-backend/internal/common/handler"
	"github.com/mingyuantech/crm-console-backend/internal/common/response"
	authService "github.com/mingyuantech/crm-console-backend/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService *authService.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *authService.AuthService) *AuthHandler {
	return &AuthHandler{authService: authSvc}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请输入用户名和密码")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供刷新令牌")
		return
	}

	pair, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	handler.MustSucceed(c, err, pair)
}

// CreateUser 创建租户内用户
func (h *AuthHandler) CreateUser(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	var req authService.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), tenantID, &req)
	handler.MustSucceed(c, err, user)
}

// ListUsers 获取租户内用户列表
func (h *AuthHandler) ListUsers(c *gin.Context) {
	tenantID, ok := handler.RequireTenantID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	users, total, err := h.authService.ListUsers(c.Request.Context(), tenantID, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, users, total, p.Page, p.PageSize)
}
