/*
 * @module service/models/schedule
 * @description 调度任务模型：任务实体、数据源描述符、告警配置及注册请求
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 任务注册 -> 持久化 -> 到期触发 -> 取消停用
 * @rules job_id 全局唯一，cancel 只置 is_active=false 不删除记录
 * @dependencies gorm.io/gorm, encoding/json
 * @refs service/scheduler/registry.go, service/scheduler/runner.go
 */

package models

import (
	"encoding/json"
	"time"
)

// 数据源类型，封闭集合
const (
	SourceTypeFile     = "file"
	SourceTypeAPI      = "api"
	SourceTypeDatabase = "database"
)

// DataSourceDescriptor 数据源描述符
type DataSourceDescriptor struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Format   string `json:"format,omitempty"`
	Charset  string `json:"charset,omitempty"`
}

// 告警渠道，线上格式沿用旧系统的取值
const (
	AlertChannelEmail          = "email"
	AlertChannelChatWebhook    = "slack"
	AlertChannelGenericWebhook = "webhook"
)

// AlertConfig 告警配置，质量分数严格低于阈值时才触发告警
type AlertConfig struct {
	Enabled          bool    `json:"enabled"`
	Channel          string  `json:"type"`
	QualityThreshold float64 `json:"quality_threshold"`
	ChannelSettings  JSONB   `json:"channel_settings,omitempty"`
}

// ScheduledJob 调度任务实体
type ScheduledJob struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	JobID         string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"job_id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	Cadence       string     `gorm:"column:schedule_expression;type:varchar(100);not null" json:"schedule"`
	DataSource    JSONB      `gorm:"type:jsonb" json:"data_source"`
	Alerts        JSONB      `gorm:"type:jsonb" json:"alerts,omitempty"`
	IsActive      bool       `gorm:"default:true;index" json:"is_active"`
	NextExecution *time.Time `gorm:"index" json:"next_execution,omitempty"`
	LastExecuted  *time.Time `json:"last_executed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ScheduledJob) TableName() string {
	return "scheduled_jobs"
}

// DataSourceDescriptor 解析任务的数据源描述符
func (j *ScheduledJob) DataSourceDescriptor() (DataSourceDescriptor, error) {
	var desc DataSourceDescriptor
	err := decodeJSONB(j.DataSource, &desc)
	return desc, err
}

// AlertConfig 解析任务的告警配置，未配置时返回 nil
func (j *ScheduledJob) AlertConfig() (*AlertConfig, error) {
	if len(j.Alerts) == 0 {
		return nil, nil
	}
	var cfg AlertConfig
	if err := decodeJSONB(j.Alerts, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScheduleJobRequest 调度任务注册请求
type ScheduleJobRequest struct {
	Name       string               `json:"name"`
	Schedule   string               `json:"schedule"`
	DataSource DataSourceDescriptor `json:"data_source"`
	Alerts     *AlertConfig         `json:"alerts,omitempty"`
}

// ToJSONB 将任意结构序列化为 JSONB
func ToJSONB(v interface{}) (JSONB, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result JSONB
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeJSONB(j JSONB, target interface{}) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
