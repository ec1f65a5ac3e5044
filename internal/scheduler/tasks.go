// Package scheduler 提供定时任务
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/mingyuantech/crm-console-backend/internal/common/config"
	orderService "github.com/mingyuantech/crm-console-backend/internal/service/order"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	statusService *orderService.StatusService
	orderCfg      config.OrderConfig
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(statusSvc *orderService.StatusService, orderCfg config.OrderConfig) *TaskHandler {
	return &TaskHandler{
		statusService: statusSvc,
		orderCfg:      orderCfg,
	}
}

// SweepExpiredPendingOrders 取消超时未确认的待处理订单
// 走正常状态机流转到已取消，利润随之重算
func (h *TaskHandler) SweepExpiredPendingOrders(ctx context.Context) error {
	expireAfter := time.Duration(h.orderCfg.PendingExpireHours) * time.Hour
	cancelled, err := h.statusService.SweepExpiredPending(ctx, expireAfter, h.orderCfg.SweepBatchSize)
	if err != nil {
		return err
	}

	if cancelled > 0 {
		log.Printf("[Task] Cancelled %d expired pending orders", cancelled)
	}
	return nil
}

// SetupTasks 设置所有任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler) {
	interval := time.Duration(handler.orderCfg.SweepInterval) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	scheduler.AddTask("SweepExpiredPendingOrders", interval, handler.SweepExpiredPendingOrders)
}
