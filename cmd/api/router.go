package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staff-directory/internal/shared/middleware"
	"staff-directory/pkg/container"
)

var startedAt = time.Now()

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = c.Config.Upload.MaxBytes + (1 << 20)

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupEmployeeRoutes(v1, c)
		setupDirectoryRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// EMPLOYEE ROUTES (AUTHENTICATED)
// ========================================
func setupEmployeeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	employees := v1.Group("/employees")
	employees.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		employees.POST("", c.EmployeeHandler.Create)
		employees.GET("", c.EmployeeHandler.ListMine)
		employees.GET("/:id", c.EmployeeHandler.Get)
		employees.PATCH("/:id", c.EmployeeHandler.Update)
		employees.DELETE("/:id", c.EmployeeHandler.Delete)
	}
}

// ========================================
// PUBLIC DIRECTORY ROUTES
// ========================================
func setupDirectoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	directory := v1.Group("/directory")
	{
		directory.GET("/employees", c.EmployeeHandler.ListPublished)
		directory.GET("/employees/:id", c.EmployeeHandler.GetPublished)
		directory.GET("/departments", c.EmployeeHandler.ListDepartments)
		directory.GET("/departments/:name", c.EmployeeHandler.ListByDepartment)
		directory.GET("/offices", c.EmployeeHandler.ListOffices)
		directory.GET("/offices/:name", c.EmployeeHandler.ListByOffice)
		directory.GET("/taxonomy", c.EmployeeHandler.Taxonomy)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/orphaned-images", c.OrphanHandler.List)
		admin.DELETE("/orphaned-images", c.OrphanHandler.Resolve)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		health := gin.H{
			"status":         "ok",
			"timestamp":      time.Now().Format(time.RFC3339),
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
			"version":        appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil {
			dbStatus = "disconnected"
		} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
		}

		storageStatus := "ok"
		if err := appCtx.Storage.HealthCheck(ctx); err != nil {
			storageStatus = fmt.Sprintf("error: %v", err)
		}

		// Redis only backs the orphan ledger, so it never degrades the status
		redisStatus := "disconnected"
		if appCtx.Redis != nil {
			redisStatus = "ok"
			if err := appCtx.Redis.HealthCheck(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			} else if n, err := appCtx.OrphanLedger.Count(ctx); err == nil {
				health["orphaned_images"] = n
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"storage":  storageStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" || storageStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
