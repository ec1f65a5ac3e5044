package lead

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/errors"
	"github.com/mingyuantech/crm-console-backend/internal/common/utils"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// LeadService 线索服务
type LeadService struct {
	leadRepo *repository.LeadRepository
}

// NewLeadService 创建线索服务
func NewLeadService(leadRepo *repository.LeadRepository) *LeadService {
	return &LeadService{leadRepo: leadRepo}
}

// CreateLeadRequest 创建线索请求
type CreateLeadRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Source     string `json:"source"`
	AssignedTo *int64 `json:"assigned_to"`
}

// CreateLead 创建线索
func (s *LeadService) CreateLead(ctx context.Context, tenantID int64, req *CreateLeadRequest) (*models.Lead, error) {
	if req.Phone != "" && !utils.ValidatePhone(req.Phone) {
		return nil, errors.ErrInvalidParams.WithMessage("手机号格式不正确")
	}
	lead := &models.Lead{
		TenantID:   tenantID,
		Name:       req.Name,
		Phone:      req.Phone,
		Source:     req.Source,
		AssignedTo: req.AssignedTo,
		Status:     models.LeadStatusNew,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return lead, nil
}

// GetLead 获取线索详情
func (s *LeadService) GetLead(ctx context.Context, tenantID, id int64) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrLeadNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return lead, nil
}

// ListLeadsRequest 线索列表请求
type ListLeadsRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Status     string `form:"status"`
	Phone      string `form:"phone"`
	BatchID    *int64 `form:"batch_id"`
	AssignedTo *int64 `form:"assigned_to"`
}

// ListLeads 获取线索列表
func (s *LeadService) ListLeads(ctx context.Context, tenantID int64, req *ListLeadsRequest) ([]*models.Lead, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.Phone != "" {
		filters["phone"] = req.Phone
	}
	if req.BatchID != nil {
		filters["batch_id"] = *req.BatchID
	}
	if req.AssignedTo != nil {
		filters["assigned_to"] = *req.AssignedTo
	}

	return s.leadRepo.List(ctx, tenantID, (page-1)*pageSize, pageSize, filters)
}
