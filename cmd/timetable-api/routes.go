package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

type routeHandlers struct {
	registry  *handler.RegistryHandler
	timetable *handler.TimetableHandler
	batches   *handler.BatchHandler
	school    *handler.SchoolHandler
	health    *handler.HealthHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, verifier *service.TokenVerifier, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(tenant.Middleware(cfg.Tenant.BaseDomain, cfg.Tenant.DefaultTenant))
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.health.Health)
	r.GET("/ready", h.health.Ready)
	r.GET("/metrics", h.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	editors := middleware.TimetableEditors()
	readers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher, models.RoleParent, models.RoleStudent)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(verifier))

	registry := api.Group("/registry")
	registry.GET("/grades", readers, h.registry.Grades)
	registry.GET("/grades/:id/streams", readers, h.registry.Streams)
	registry.GET("/grades/:id/teachers", readers, h.registry.Teachers)
	registry.GET("/levels/:id/subjects", readers, h.registry.Subjects)
	registry.POST("/refresh", editors, h.registry.Refresh)

	terms := api.Group("/terms/:termId")
	terms.GET("/time-slots", readers, h.timetable.TimeSlots)
	terms.GET("/grades/:gradeId/timetable", readers, h.timetable.Grid)
	terms.GET("/grades/:gradeId/timetable/export", readers, h.timetable.Export)

	tt := api.Group("/timetable")
	tt.GET("/available-teachers", editors, h.timetable.AvailableTeachers)
	tt.GET("/entries", readers, h.timetable.ListEntries)
	tt.POST("/entries", editors, h.timetable.CreateEntry)
	tt.GET("/entries/:id", readers, h.timetable.GetEntry)
	tt.PATCH("/entries/:id", editors, h.timetable.UpdateEntry)
	tt.DELETE("/entries/:id", editors, h.timetable.DeleteEntry)
	tt.POST("/bulk", editors, h.batches.Bulk)
	tt.POST("/week-templates", editors, h.batches.WeekTemplate)
	tt.GET("/batches/:id", editors, h.batches.Batch)

	school := api.Group("/school", editors)
	school.POST("/terms", h.school.CreateTerm)
	school.POST("/levels", h.school.ConfigureLevels)

	return r
}
