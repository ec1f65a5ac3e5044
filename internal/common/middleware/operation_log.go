// Package middleware 提供 HTTP 中间件
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mingyuantech/crm-console-backend/internal/common/crypto"
	"github.com/mingyuantech/crm-console-backend/internal/models"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
)

// OperationLogger 操作日志中间件
// 记录后台写操作的审计轨迹，成本类改动尤其依赖这份记录回溯
type OperationLogger struct {
	repo *repository.OperationLogRepository
}

// NewOperationLogger 创建操作日志中间件
func NewOperationLogger(repo *repository.OperationLogRepository) *OperationLogger {
	return &OperationLogger{repo: repo}
}

// OperationConfig 操作配置
type OperationConfig struct {
	Module      string
	Action      string
	TargetType  string
	GetTargetID func(*gin.Context) *int64
}

// ModuleAction 模块操作映射
var moduleActionMap = map[string]OperationConfig{
	"PUT /admin/costs/defaults": {
		Module: "cost_config",
		Action: "update_defaults",
	},
	"POST /admin/leads/batches": {
		Module:     "lead",
		Action:     "create_batch",
		TargetType: "lead_batch",
	},
	"POST /admin/leads/batches/:id/cost": {
		Module:     "lead",
		Action:     "correct_batch_cost",
		TargetType: "lead_batch",
	},
	"POST /admin/orders": {
		Module:     "order",
		Action:     "create",
		TargetType: "order",
	},
	"PUT /admin/orders/:id/status": {
		Module:     "order",
		Action:     "change_status",
		TargetType: "order",
	},
	"PUT /admin/orders/:id/costs": {
		Module:     "order",
		Action:     "update_costs",
		TargetType: "order",
	},
	"POST /admin/products": {
		Module:     "product",
		Action:     "create",
		TargetType: "product",
	},
	"PUT /admin/products/:id": {
		Module:     "product",
		Action:     "update",
		TargetType: "product",
	},
	"POST /admin/users": {
		Module:     "user",
		Action:     "create",
		TargetType: "user",
	},
}

// Log 操作日志中间件处理函数
func (l *OperationLogger) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只记录写操作
		if !l.shouldLog(c) {
			c.Next()
			return
		}

		// 读取请求体
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		// 执行处理
		c.Next()

		// 记录日志（异步）
		go l.logOperation(c, requestBody)
	}
}

// shouldLog 判断是否需要记录日志
func (l *OperationLogger) shouldLog(c *gin.Context) bool {
	method := c.Request.Method
	// 只记录写操作
	return method == "POST" || method == "PUT" || method == "DELETE" || method == "PATCH"
}

// logOperation 记录操作日志
func (l *OperationLogger) logOperation(c *gin.Context, requestBody []byte) {
	if l.repo == nil {
		return
	}

	// 获取路由配置
	path := c.FullPath()
	routeKey := c.Request.Method + " " + path
	config, ok := moduleActionMap[routeKey]
	if !ok && strings.HasPrefix(path, "/api/v1") {
		// 兼容路由组前缀差异：Gin full path 可能包含 /api/v1 前缀
		altKey := c.Request.Method + " " + strings.TrimPrefix(path, "/api/v1")
		config, ok = moduleActionMap[altKey]
	}
	if !ok {
		// 尝试获取通用配置
		config = l.getDefaultConfig(c)
	}

	tenantID, userID, ok := l.getOperator(c)
	if !ok {
		return
	}

	// 构建日志记录
	log := &models.OperationLog{
		TenantID: tenantID,
		UserID:   userID,
		Module:   config.Module,
		Action:   config.Action,
		IP:       c.ClientIP(),
	}

	// 设置 User-Agent
	userAgent := c.Request.UserAgent()
	if userAgent != "" {
		log.UserAgent = &userAgent
	}

	// 设置目标类型和 ID
	if config.TargetType != "" {
		log.TargetType = &config.TargetType
		if config.GetTargetID != nil {
			log.TargetID = config.GetTargetID(c)
		} else if targetID := l.getTargetID(c); targetID != nil {
			log.TargetID = targetID
		}
	}

	// 设置请求数据
	if len(requestBody) > 0 {
		var data interface{}
		if err := json.Unmarshal(requestBody, &data); err == nil {
			// 过滤敏感字段
			filteredData := l.filterSensitiveData(data)
			if mapData, ok := filteredData.(map[string]interface{}); ok {
				log.AfterData = mapData
			}
		}
	}

	// 保存日志
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = l.repo.Create(ctx, log)
}

// getOperator 从认证上下文取租户与操作人
func (l *OperationLogger) getOperator(c *gin.Context) (int64, int64, bool) {
	tenantVal, ok := c.Get("tenant_id")
	if !ok {
		return 0, 0, false
	}
	tenantID, ok := tenantVal.(int64)
	if !ok || tenantID <= 0 {
		return 0, 0, false
	}

	userVal, ok := c.Get("user_id")
	if !ok {
		return 0, 0, false
	}
	userID, ok := userVal.(int64)
	if !ok || userID <= 0 {
		return 0, 0, false
	}
	return tenantID, userID, true
}

// getDefaultConfig 获取默认配置
func (l *OperationLogger) getDefaultConfig(c *gin.Context) OperationConfig {
	path := c.FullPath()
	method := c.Request.Method

	// 从路径推断模块
	module := "unknown"
	if strings.Contains(path, "/orders") {
		module = "order"
	} else if strings.Contains(path, "/leads") {
		module = "lead"
	} else if strings.Contains(path, "/products") {
		module = "product"
	} else if strings.Contains(path, "/costs") {
		module = "cost_config"
	} else if strings.Contains(path, "/users") {
		module = "user"
	} else if strings.Contains(path, "/auth") {
		module = "auth"
	}

	// 从方法推断操作
	action := "unknown"
	switch method {
	case "POST":
		action = "create"
	case "PUT", "PATCH":
		action = "update"
	case "DELETE":
		action = "delete"
	}

	return OperationConfig{
		Module: module,
		Action: action,
	}
}

// getTargetID 从路径参数获取目标 ID
func (l *OperationLogger) getTargetID(c *gin.Context) *int64 {
	idStr := c.Param("id")
	if idStr == "" {
		return nil
	}

	if id, err := json.Number(idStr).Int64(); err == nil {
		return &id
	}
	return nil
}

// filterSensitiveData 过滤敏感数据
func (l *OperationLogger) filterSensitiveData(data interface{}) interface{} {
	sensitiveFields := []string{
		"password", "old_password", "new_password", "confirm_password",
		"token", "access_token", "refresh_token",
		"secret", "api_key", "api_secret",
	}

	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{})
		for key, value := range v {
			lowerKey := strings.ToLower(key)
			isSensitive := false
			for _, sf := range sensitiveFields {
				if strings.Contains(lowerKey, sf) {
					isSensitive = true
					break
				}
			}
			if isSensitive {
				result[key] = "***"
			} else if s, ok := value.(string); ok && strings.Contains(lowerKey, "phone") {
				// 客户手机号脱敏后入审计表
				result[key] = crypto.MaskPhone(s)
			} else {
				result[key] = l.filterSensitiveData(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = l.filterSensitiveData(item)
		}
		return result
	default:
		return data
	}
}
