// Package main 是应用程序入口
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mingyuantech/crm-console-backend/internal/common/config"
	"github.com/mingyuantech/crm-console-backend/internal/common/jwt"
	"github.com/mingyuantech/crm-console-backend/internal/common/metrics"
	commonmw "github.com/mingyuantech/crm-console-backend/internal/common/middleware"
	authHandler "github.com/mingyuantech/crm-console-backend/internal/handler/auth"
	leadHandler "github.com/mingyuantech/crm-console-backend/internal/handler/lead"
	orderHandler "github.com/mingyuantech/crm-console-backend/internal/handler/order"
	productHandler "github.com/mingyuantech/crm-console-backend/internal/handler/product"
	profitHandler "github.com/mingyuantech/crm-console-backend/internal/handler/profit"
	"github.com/mingyuantech/crm-console-backend/internal/middleware"
	"github.com/mingyuantech/crm-console-backend/internal/repository"
	"github.com/mingyuantech/crm-console-backend/internal/scheduler"
	authService "github.com/mingyuantech/crm-console-backend/internal/service/auth"
	leadService "github.com/mingyuantech/crm-console-backend/internal/service/lead"
	orderService "github.com/mingyuantech/crm-console-backend/internal/service/order"
	productService "github.com/mingyuantech/crm-console-backend/internal/service/product"
	profitService "github.com/mingyuantech/crm-console-backend/internal/service/profit"
)

// setupRouter 设置路由并返回定时任务处理器
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) *scheduler.TaskHandler {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	batchRepo := repository.NewLeadBatchRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	costRepo := repository.NewOrderCostRepository(db)
	configRepo := repository.NewCostConfigRepository(db)
	opLogRepo := repository.NewOperationLogRepository(db)

	// 初始化服务
	authSvc := authService.NewAuthService(userRepo, jwtManager)

	costConfigSvc := profitService.NewCostConfigService(configRepo)
	calculator := profitService.NewCalculator(orderRepo, costRepo, costConfigSvc)
	reportSvc := profitService.NewReportService(orderRepo, calculator, costConfigSvc)
	exportSvc := profitService.NewExportService(orderRepo, calculator, costConfigSvc)

	leadSvc := leadService.NewLeadService(leadRepo)
	batchSvc := leadService.NewBatchService(db, batchRepo, leadRepo)

	productSvc := productService.NewProductService(productRepo)

	orderSvc := orderService.NewOrderService(db, orderRepo, productRepo, leadRepo, calculator, costConfigSvc)
	statusSvc := orderService.NewStatusService(db, orderRepo, calculator, costConfigSvc)

	// 初始化处理器
	authH := authHandler.NewAuthHandler(authSvc)
	leadH := leadHandler.NewLeadHandler(leadSvc)
	batchH := leadHandler.NewBatchHandler(batchSvc)
	productH := productHandler.NewProductHandler(productSvc)
	orderH := orderHandler.NewOrderHandler(orderSvc, statusSvc, calculator)
	profitH := profitHandler.NewProfitHandler(costConfigSvc, reportSvc, exportSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.CORS(nil))
	r.Use(middleware.AccessLog(logger))
	if cfg.Tracing.Enabled {
		r.Use(commonmw.Tracing(&commonmw.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", "/metrics"},
		}))
	}

	// Prometheus 指标
	m := metrics.Init("")
	r.Use(m.Middleware())
	r.GET("/metrics", metrics.Handler())

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开接口（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authH.Login)
			auth.POST("/refresh", authH.RefreshToken)
		}

		// 管理后台接口（需要租户认证）
		admin := v1.Group("/admin")
		admin.Use(middleware.TenantAuth(jwtManager))
		admin.Use(commonmw.NewOperationLogger(opLogRepo).Log())
		{
			// 用户管理（仅管理员）
			users := admin.Group("/users")
			users.Use(middleware.RequireRoles(jwt.RoleAdmin))
			{
				users.POST("", authH.CreateUser)
				users.GET("", authH.ListUsers)
			}

			// 商品管理
			admin.POST("/products", productH.CreateProduct)
			admin.GET("/products", productH.ListProducts)
			admin.GET("/products/:id", productH.GetProduct)
			admin.PUT("/products/:id", productH.UpdateProduct)

			// 线索与批次
			admin.POST("/leads", leadH.CreateLead)
			admin.GET("/leads", leadH.ListLeads)
			admin.GET("/leads/:id", leadH.GetLead)
			admin.POST("/leads/batches", batchH.CreateBatch)
			admin.GET("/leads/batches", batchH.ListBatches)
			admin.GET("/leads/batches/:id", batchH.GetBatch)
			admin.POST("/leads/batches/:id/cost", batchH.CorrectBatchCost)

			// 订单
			admin.POST("/orders", orderH.CreateOrder)
			admin.GET("/orders", orderH.ListOrders)
			admin.GET("/orders/:id", orderH.GetOrder)
			admin.PUT("/orders/:id/status", orderH.ChangeStatus)
			admin.GET("/orders/:id/profit", orderH.GetProfit)
			admin.PUT("/orders/:id/costs", orderH.UpdateCosts)

			// 成本配置
			admin.GET("/costs/defaults", profitH.GetDefaultCosts)
			admin.PUT("/costs/defaults", profitH.UpdateDefaultCosts)

			// 利润报表
			admin.GET("/reports/profit", profitH.GetProfitReport)
			admin.GET("/reports/profit/export",
				middleware.ExportRateLimit(redisClient, 10),
				profitH.ExportProfitReport)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})

	// 定时任务处理器由 main 启动
	return scheduler.NewTaskHandler(statusSvc, cfg.Business.Order)
}
