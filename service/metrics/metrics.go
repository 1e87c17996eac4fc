/*
 * @module service/metrics/metrics
 * @description Prometheus 业务指标定义
 * @architecture 分层架构 - 可观测层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 业务事件 -> 计数器累加 -> /metrics 暴露
 * @rules 指标统一 dqguard 前缀，标签取值为封闭集合
 * @dependencies github.com/prometheus/client_golang
 * @refs main.go, service/scheduler/runner.go, service/alert/dispatcher.go
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Validations 质量检测执行计数，mode 为 profile 或 rules
	Validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqguard_validations_total",
		Help: "质量检测执行总数",
	}, []string{"mode"})

	// ScheduledRuns 调度任务执行计数，result 为 success、failure 或 panic
	ScheduledRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqguard_scheduled_runs_total",
		Help: "调度任务执行总数",
	}, []string{"result"})

	// AlertAttempts 告警投递尝试计数，result 为 success 或 failure
	AlertAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqguard_alert_attempts_total",
		Help: "告警投递尝试总数",
	}, []string{"channel", "result"})
)
