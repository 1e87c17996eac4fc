/*
 * @module service/scheduler/registry
 * @description 调度任务注册表，负责任务的注册、取消与活跃任务查询
 * @architecture 分层架构 - 调度管理层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 注册请求校验 -> 生成任务ID -> 计算下次执行时间 -> 持久化
 * @rules 取消只停用不删除；节奏无法识别的任务照常入库但永不到期
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/scheduler/cadence.go, service/scheduler/runner.go
 */

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dqguard-service/service/models"
)

// ErrJobNotFound 任务不存在或已停用
var ErrJobNotFound = errors.New("调度任务不存在或已停用")

// Registry 调度任务注册表
type Registry struct {
	db *gorm.DB
}

// NewRegistry 创建调度任务注册表实例
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Register 注册调度任务并返回持久化后的任务实体
func (r *Registry) Register(req *models.ScheduleJobRequest) (*models.ScheduledJob, error) {
	if req.Schedule == "" {
		return nil, fmt.Errorf("%w: 调度表达式为空", models.ErrInvalidJob)
	}
	if req.DataSource.Location == "" {
		return nil, fmt.Errorf("%w: 数据源位置为空", models.ErrInvalidJob)
	}
	switch req.DataSource.Type {
	case models.SourceTypeFile, models.SourceTypeAPI, models.SourceTypeDatabase:
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSource, req.DataSource.Type)
	}

	jobID := uuid.NewString()
	name := req.Name
	if name == "" {
		name = "Validation Job " + jobID[:8]
	}

	dataSource, err := models.ToJSONB(req.DataSource)
	if err != nil {
		return nil, fmt.Errorf("序列化数据源失败: %w", err)
	}

	var alerts models.JSONB
	if req.Alerts != nil {
		alerts, err = models.ToJSONB(req.Alerts)
		if err != nil {
			return nil, fmt.Errorf("序列化告警配置失败: %w", err)
		}
	}

	next := NextExecution(req.Schedule, time.Now())
	if next == nil {
		slog.Warn("调度表达式无法识别，任务将保持惰性",
			"job_id", jobID, "schedule", req.Schedule)
	}

	job := &models.ScheduledJob{
		JobID:         jobID,
		Name:          name,
		Cadence:       req.Schedule,
		DataSource:    dataSource,
		Alerts:        alerts,
		IsActive:      true,
		NextExecution: next,
	}
	if err := r.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("持久化调度任务失败: %w", err)
	}

	slog.Info("调度任务注册成功", "job_id", jobID, "name", name, "schedule", req.Schedule)
	return job, nil
}

// Cancel 停用指定任务，记录保留以便审计
func (r *Registry) Cancel(jobID string) error {
	result := r.db.Model(&models.ScheduledJob{}).
		Where("job_id = ? AND is_active = ?", jobID, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("停用调度任务失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	slog.Info("调度任务已取消", "job_id", jobID)
	return nil
}

// ListActive 查询所有活跃任务
func (r *Registry) ListActive() ([]models.ScheduledJob, error) {
	var jobs []models.ScheduledJob
	err := r.db.Where("is_active = ?", true).
		Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃任务失败: %w", err)
	}
	return jobs, nil
}

// Get 按任务ID查询任务
func (r *Registry) Get(jobID string) (*models.ScheduledJob, error) {
	var job models.ScheduledJob
	err := r.db.Where("job_id = ?", jobID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("查询调度任务失败: %w", err)
	}
	return &job, nil
}
