// Package product 提供商品管理服务
package product

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo *repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name      string          `json:"name" binding:"required"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// CreateProduct 创建商品
func (s *ProductService) CreateProduct(ctx context.Context, tenantID int64, req *CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() || req.CostPrice.IsNegative() {
		return nil, errors.ErrInvalidParams
	}

	product := &models.Product{
		TenantID:  tenantID,
		Name:      req.Name,
		SKU:       req.SKU,
		Price:     req.Price,
		CostPrice: req.CostPrice,
		Status:    models.ProductStatusOnShelf,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return product, nil
}

// GetProduct 获取商品详情
func (s *ProductService) GetProduct(ctx context.Context, tenantID, id int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProductNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return product, nil
}

// UpdateProductRequest 更新商品请求，nil 字段表示不修改
type UpdateProductRequest struct {
	Name      *string          `json:"name"`
	SKU       *string          `json:"sku"`
	Price     *decimal.Decimal `json:"price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Status    *int8            `json:"status"`
}

// UpdateProduct 更新商品
// 改动 cost_price 会影响后续所有利润计算，历史报表随之变化
func (s *ProductService) UpdateProduct(ctx context.Context, tenantID, id int64, req *UpdateProductRequest) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, tenantID, id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.SKU != nil {
		fields["sku"] = *req.SKU
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, errors.ErrInvalidParams
		}
		fields["price"] = *req.Price
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, errors.ErrInvalidParams
		}
		fields["cost_price"] = *req.CostPrice
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.productRepo.UpdateFields(ctx, tenantID, id, fields); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}
	return s.GetProduct(ctx, tenantID, id)
}

// ListProducts 获取商品列表
func (s *ProductService) ListProducts(ctx context.Context, tenantID int64, page, pageSize int, status *int8) ([]*models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.List(ctx, tenantID, (page-1)*pageSize, pageSize, status)
}
