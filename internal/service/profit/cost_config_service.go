package profit

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// CostConfigService 租户成本配置服务
// 维护租户级默认成本（打包、打印、退货），未配置时各项默认为 0
type CostConfigService struct {
	configRepo *repository.CostConfigRepository
}

// NewCostConfigService 创建成本配置服务
func NewCostConfigService(configRepo *repository.CostConfigRepository) *CostConfigService {
	return &CostConfigService{configRepo: configRepo}
}

// GetDefaultCosts 获取租户默认成本，未配置时返回全零
func (s *CostConfigService) GetDefaultCosts(ctx context.Context, tenantID int64) (*models.DefaultCosts, error) {
	config, err := s.configRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.DefaultCosts{
				PackagingCost: decimal.Zero,
				PrintingCost:  decimal.Zero,
				ReturnCost:    decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return &models.DefaultCosts{
		PackagingCost: config.DefaultPackagingCost,
		PrintingCost:  config.DefaultPrintingCost,
		ReturnCost:    config.DefaultReturnCost,
	}, nil
}

// UpdateDefaultCostsRequest 更新默认成本请求，nil 字段表示不修改
type UpdateDefaultCostsRequest struct {
	PackagingCost *decimal.Decimal `json:"packaging_cost"`
	PrintingCost  *decimal.Decimal `json:"printing_cost"`
	ReturnCost    *decimal.Decimal `json:"return_cost"`
}

// UpdateDefaultCosts 更新租户默认成本
// 全字段校验后整体落库，任一字段非法则拒绝整个请求
func (s *CostConfigService) UpdateDefaultCosts(ctx context.Context, tenantID int64, req *UpdateDefaultCostsRequest) (*models.DefaultCosts, error) {
	if err := validateCostFields([]costField{
		{"packaging_cost", req.PackagingCost},
		{"printing_cost", req.PrintingCost},
		{"return_cost", req.ReturnCost},
	}); err != nil {
		return nil, err
	}

	current, err := s.GetDefaultCosts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if req.PackagingCost != nil {
		current.PackagingCost = *req.PackagingCost
	}
	if req.PrintingCost != nil {
		current.PrintingCost = *req.PrintingCost
	}
	if req.ReturnCost != nil {
		current.ReturnCost = *req.ReturnCost
	}

	config := &models.TenantCostConfig{
		TenantID:             tenantID,
		DefaultPackagingCost: current.PackagingCost,
		DefaultPrintingCost:  current.PrintingCost,
		DefaultReturnCost:    current.ReturnCost,
	}
	if err := s.configRepo.Upsert(ctx, config); err != nil {
		return nil, err
	}
	return current, nil
}

// costField 待校验的成本字段，nil 值跳过校验
type costField struct {
	name  string
	value *decimal.Decimal
}

// validateCostFields 校验成本字段非负，收集全部非法字段后统一返回
func validateCostFields(fields []costField) error {
	var invalid []string
	for _, f := range fields {
		if f.value != nil && f.value.IsNegative() {
			invalid = append(invalid, f.name)
		}
	}
	if len(invalid) > 0 {
		return NewCostValidationError(invalid...)
	}
	return nil
}
