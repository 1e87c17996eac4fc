/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/
 */

package api

import (
	"dqguard-service/api/controllers"
	"dqguard-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 质量检测
	r.Route("/validation", func(r chi.Router) {
		validationController := controllers.NewValidationController(
			service.GlobalLoader, service.GlobalValidationService, service.GlobalResultStore)

		r.Post("/upload", validationController.ValidateUpload)
		r.Post("/rules", validationController.ValidateWithRules)
		r.Get("/history", validationController.GetHistory)
		r.Get("/rule-templates", validationController.GetRuleTemplates)
	})

	// 调度管理
	r.Route("/schedule", func(r chi.Router) {
		scheduleController := controllers.NewScheduleController(service.GlobalScheduleRegistry)

		r.Post("/validation", scheduleController.CreateJob)
		r.Get("/jobs", scheduleController.ListJobs)
		r.Delete("/jobs/{job_id}", scheduleController.CancelJob)
	})

	// 仪表板
	r.Route("/dashboard", func(r chi.Router) {
		dashboardController := controllers.NewDashboardController(service.GlobalResultStore)

		r.Get("/summary", dashboardController.GetSummary)
		r.Get("/trends", dashboardController.GetTrends)
	})
}
