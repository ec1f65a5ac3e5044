// Package auth 提供后台用户认证服务
package auth

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/crypto"
	"github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/common/jwt"
	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// AuthService 认证服务
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *jwt.Manager
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User  *models.User   `json:"user"`
	Token *jwt.TokenPair `json:"token"`
}

// Login 用户登录
// 令牌内携带 tenant_id，之后所有数据访问以该租户为边界
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !crypto.VerifyPassword(req.Password, user.Password) {
		return nil, errors.ErrPasswordError
	}
	if user.Status != models.UserStatusActive {
		return nil, errors.ErrAccountDisabled
	}

	token, err := s.jwtManager.GenerateTokenPair(user.ID, user.TenantID, user.Role)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	logger.Info("用户登录成功",
		logger.TenantID(user.TenantID),
		logger.UserID(user.ID))
	return &LoginResponse{User: user, Token: token}, nil
}

// RefreshToken 刷新令牌
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	pair, err := s.jwtManager.RefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrTokenRefreshFail.WithError(err)
	}
	return pair, nil
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// CreateUser 创建租户内用户
func (s *AuthService) CreateUser(ctx context.Context, tenantID int64, req *CreateUserRequest) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, errors.ErrUserExists
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	role := req.Role
	if role != models.UserRoleAdmin && role != models.UserRoleAgent {
		role = models.UserRoleAgent
	}

	user := &models.User{
		TenantID: tenantID,
		Username: req.Username,
		Password: hashed,
		Nickname: req.Nickname,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return user, nil
}

// ListUsers 获取租户内用户列表
func (s *AuthService) ListUsers(ctx context.Context, tenantID int64, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.ListByTenant(ctx, tenantID, offset, limit)
}
