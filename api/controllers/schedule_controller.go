/*
 * @module api/controllers/schedule_controller
 * @description 调度管理控制器，提供定时检测任务的注册、查询与取消接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 任务校验 -> 注册/取消 -> 响应返回
 * @rules 任务定义错误返回400，任务不存在返回404
 * @dependencies dqguard-service/service/scheduler
 * @refs api/routes.go, service/scheduler/registry.go
 */

package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"dqguard-service/service/models"
	"dqguard-service/service/scheduler"
)

// ScheduleController 调度管理控制器
type ScheduleController struct {
	registry *scheduler.Registry
}

// NewScheduleController 创建调度管理控制器实例
func NewScheduleController(registry *scheduler.Registry) *ScheduleController {
	return &ScheduleController{registry: registry}
}

// CreateJob 注册定时检测任务
// @Summary 注册定时检测任务
// @Description 按节奏表达式注册周期性质量检测任务，可选配置低分告警
// @Tags 调度管理
// @Accept json
// @Produce json
// @Param request body models.ScheduleJobRequest true "任务定义"
// @Success 200 {object} APIResponse{data=models.ScheduledJob} "注册成功"
// @Failure 400 {object} APIResponse "任务定义错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /schedule/validation [post]
func (c *ScheduleController) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleJobRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	job, err := c.registry.Register(&req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidJob) || errors.Is(err, models.ErrUnsupportedSource) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    err.Error(),
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "注册调度任务失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "调度任务注册成功",
		Data:   job,
	})
}

// ListJobs 查询活跃任务
// @Summary 查询活跃调度任务
// @Description 返回所有未取消的调度任务
// @Tags 调度管理
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ScheduledJob} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /schedule/jobs [get]
func (c *ScheduleController) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := c.registry.ListActive()
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询调度任务失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询调度任务成功",
		Data:   jobs,
	})
}

// CancelJob 取消调度任务
// @Summary 取消调度任务
// @Description 停用指定任务，任务记录保留以便审计
// @Tags 调度管理
// @Produce json
// @Param job_id path string true "任务ID"
// @Success 200 {object} APIResponse "取消成功"
// @Failure 404 {object} APIResponse "任务不存在或已停用"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /schedule/jobs/{job_id} [delete]
func (c *ScheduleController) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	if err := c.registry.Cancel(jobID); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    err.Error(),
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "取消调度任务失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "调度任务已取消",
	})
}
