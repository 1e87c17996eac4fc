/*
 * @module service/scheduler/runner
 * @description 调度执行器，单协程轮询到期任务并串行执行完整的加载-检测-告警流程
 * @architecture 分层架构 - 调度执行层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 定时轮询 -> 筛选到期任务 -> 逐个执行 -> 推进下次执行时间
 * @rules 单个任务失败不影响其他任务；无论成败都推进 next_execution；Start 幂等，Stop 阻塞至轮询协程退出
 * @dependencies gorm.io/gorm
 * @refs service/scheduler/registry.go, service/validation/validation_service.go, service/alert/dispatcher.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"dqguard-service/service/metrics"
	"dqguard-service/service/models"
)

// 轮询间隔默认 60 秒
const defaultTickInterval = 60 * time.Second

// DatasetLoader 数据集加载能力
type DatasetLoader interface {
	Load(ctx context.Context, desc models.DataSourceDescriptor) (*models.Dataset, error)
}

// ReportBuilder 画像验证能力。持久化失败时仍返回已生成的报告和错误，
// 由调用方决定是否容忍
type ReportBuilder interface {
	ValidateDataset(ctx context.Context, ds *models.Dataset) (*models.ValidationReport, error)
}

// AlertNotifier 告警投递能力
type AlertNotifier interface {
	Dispatch(ctx context.Context, cfg *models.AlertConfig, report *models.ValidationReport) error
}

// Runner 调度执行器
type Runner struct {
	db           *gorm.DB
	loader       DatasetLoader
	validator    ReportBuilder
	notifier     AlertNotifier
	tickInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner 创建调度执行器
func NewRunner(db *gorm.DB, loader DatasetLoader, validator ReportBuilder, notifier AlertNotifier) *Runner {
	return &Runner{
		db:           db,
		loader:       loader,
		validator:    validator,
		notifier:     notifier,
		tickInterval: defaultTickInterval,
	}
}

// SetTickInterval 调整轮询间隔，须在 Start 之前调用
func (r *Runner) SetTickInterval(d time.Duration) {
	if d > 0 {
		r.tickInterval = d
	}
}

// Start 启动轮询协程，重复调用无副作用
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.loop(ctx)
	slog.Info("调度执行器已启动", "tick_interval", r.tickInterval.String())
}

// Stop 停止轮询并等待当前轮次结束
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
	slog.Info("调度执行器已停止")
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 停止信号只在轮询点生效，执行中的轮次使用独立上下文跑完
			if err := r.ExecuteDueJobs(context.Background(), time.Now()); err != nil {
				slog.Error("执行到期任务轮次失败", "error", err)
			}
		}
	}
}

// ExecuteDueJobs 执行 now 时刻所有到期的活跃任务，供轮询协程和手动触发共用
func (r *Runner) ExecuteDueJobs(ctx context.Context, now time.Time) error {
	var jobs []models.ScheduledJob
	err := r.db.
		Where("is_active = ? AND next_execution IS NOT NULL AND next_execution <= ?", true, now).
		Order("next_execution ASC").Find(&jobs).Error
	if err != nil {
		return fmt.Errorf("查询到期任务失败: %w", err)
	}

	for i := range jobs {
		r.executeJob(ctx, &jobs[i], now)
	}
	return nil
}

// executeJob 执行单个任务，panic 被回收，执行时间无条件推进
func (r *Runner) executeJob(ctx context.Context, job *models.ScheduledJob, now time.Time) {
	defer r.advance(job, now)
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("调度任务执行异常", "job_id", job.JobID, "panic", rec)
			metrics.ScheduledRuns.WithLabelValues("panic").Inc()
		}
	}()

	slog.Info("开始执行调度任务", "job_id", job.JobID, "name", job.Name)

	desc, err := job.DataSourceDescriptor()
	if err != nil {
		slog.Error("任务数据源配置损坏", "job_id", job.JobID, "error", err)
		metrics.ScheduledRuns.WithLabelValues("failure").Inc()
		return
	}

	ds, err := r.loader.Load(ctx, desc)
	if err != nil {
		slog.Error("任务数据加载失败", "job_id", job.JobID, "source", desc.Location, "error", err)
		metrics.ScheduledRuns.WithLabelValues("failure").Inc()
		return
	}

	report, err := r.validator.ValidateDataset(ctx, ds)
	if report == nil {
		slog.Error("任务质量检测失败", "job_id", job.JobID, "error", err)
		metrics.ScheduledRuns.WithLabelValues("failure").Inc()
		return
	}
	if err != nil {
		// 报告已生成但落库失败，调度场景下容忍并继续告警流程
		slog.Error("任务结果持久化失败", "job_id", job.JobID, "error", err)
	}

	slog.Info("调度任务检测完成",
		"job_id", job.JobID, "source", report.Source, "quality_score", report.QualityScore)
	metrics.ScheduledRuns.WithLabelValues("success").Inc()

	cfg, err := job.AlertConfig()
	if err != nil {
		slog.Error("任务告警配置损坏", "job_id", job.JobID, "error", err)
		return
	}
	if cfg == nil {
		return
	}
	if err := r.notifier.Dispatch(ctx, cfg, report); err != nil {
		slog.Error("任务告警投递失败", "job_id", job.JobID, "error", err)
	}
}

// advance 推进任务的执行时间戳
func (r *Runner) advance(job *models.ScheduledJob, now time.Time) {
	updates := map[string]interface{}{
		"last_executed":  now,
		"next_execution": NextExecution(job.Cadence, now),
	}
	err := r.db.Model(&models.ScheduledJob{}).
		Where("job_id = ?", job.JobID).Updates(updates).Error
	if err != nil {
		slog.Error("推进任务执行时间失败", "job_id", job.JobID, "error", err)
	}
}
