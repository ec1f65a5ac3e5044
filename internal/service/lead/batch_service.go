// Package lead 提供线索与线索批次管理服务
package lead

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/common/logger"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
	"github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

// costPerLeadScale 单线索成本保留小数位
const costPerLeadScale = 4

// BatchService 线索批次服务
// 批次成本按线索条数均摊，cost_per_lead 创建时固化；
// 成本录错通过 CorrectBatchCost 修正并重新均摊
type BatchService struct {
	db        *gorm.DB
	batchRepo *repository.LeadBatchRepository
	leadRepo  *repository.LeadRepository
}

// NewBatchService 创建线索批次服务
func NewBatchService(db *gorm.DB, batchRepo *repository.LeadBatchRepository, leadRepo *repository.LeadRepository) *BatchService {
	return &BatchService{
		db:        db,
		batchRepo: batchRepo,
		leadRepo:  leadRepo,
	}
}

// CreateBatchRequest 创建线索批次请求
type CreateBatchRequest struct {
	Name      string          `json:"name"`
	TotalCost decimal.Decimal `json:"total_cost"`
	LeadIDs   []int64         `json:"lead_ids" binding:"required"`
}

// CreateBatch 创建线索批次并挂接线索
// 建批次与改线索归属在同一事务内完成，校验不过不落任何写入
func (s *BatchService) CreateBatch(ctx context.Context, tenantID, importedBy int64, req *CreateBatchRequest) (*models.LeadBatch, error) {
	var invalid []string
	if req.TotalCost.IsNegative() {
		invalid = append(invalid, "total_cost")
	}
	if len(req.LeadIDs) == 0 {
		invalid = append(invalid, "lead_ids")
	}
	if len(invalid) > 0 {
		return nil, profit.NewCostValidationError(invalid...)
	}

	count, err := s.leadRepo.CountByIDs(ctx, tenantID, req.LeadIDs)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if count != int64(len(req.LeadIDs)) {
		return nil, errors.ErrLeadNotFound
	}

	// 已挂批次的线索不允许换挂，否则原批次 lead_count 与实际引用数脱节
	bound, err := s.leadRepo.CountBoundByIDs(ctx, tenantID, req.LeadIDs)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if bound > 0 {
		return nil, errors.ErrLeadAlreadyBound
	}

	batch := &models.LeadBatch{
		TenantID:    tenantID,
		Name:        req.Name,
		TotalCost:   req.TotalCost,
		LeadCount:   len(req.LeadIDs),
		CostPerLead: averageCost(req.TotalCost, len(req.LeadIDs)),
		ImportedBy:  importedBy,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.batchRepo.Create(ctx, tx, batch); err != nil {
			return err
		}
		return s.leadRepo.AttachToBatch(ctx, tx, tenantID, req.LeadIDs, batch.ID)
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("线索批次创建完成",
		logger.TenantID(tenantID),
		logger.BatchID(batch.ID),
		logger.Int("lead_count", batch.LeadCount))
	return batch, nil
}

// CorrectBatchCost 修正批次总成本
// 用存量 lead_count 重新均摊，后续订单重算即按新单价取线索成本
func (s *BatchService) CorrectBatchCost(ctx context.Context, tenantID, batchID int64, totalCost decimal.Decimal) (*models.LeadBatch, error) {
	if totalCost.IsNegative() {
		return nil, profit.NewCostValidationError("total_cost")
	}

	batch, err := s.batchRepo.GetByID(ctx, tenantID, batchID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBatchNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	costPerLead := averageCost(totalCost, batch.LeadCount)
	err = s.batchRepo.UpdateCost(ctx, tenantID, batchID, map[string]interface{}{
		"total_cost":    totalCost,
		"cost_per_lead": costPerLead,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	batch.TotalCost = totalCost
	batch.CostPerLead = costPerLead
	return batch, nil
}

// GetBatch 获取批次详情
func (s *BatchService) GetBatch(ctx context.Context, tenantID, batchID int64) (*models.LeadBatch, error) {
	batch, err := s.batchRepo.GetByID(ctx, tenantID, batchID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBatchNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return batch, nil
}

// ListBatches 获取批次列表
func (s *BatchService) ListBatches(ctx context.Context, tenantID int64, offset, limit int) ([]*models.LeadBatch, int64, error) {
	return s.batchRepo.List(ctx, tenantID, offset, limit)
}

// averageCost 均摊成本，保留四位小数
func averageCost(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(costPerLeadScale)
}
