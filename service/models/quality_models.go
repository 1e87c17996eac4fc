/*
 * @module service/models/quality_models
 * @description 质量检测持久化实体与仪表板聚合结构
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 质量报告生成 -> 持久化 -> 仪表板聚合查询
 * @rules 报告持久化后不可变，聚合查询只读
 * @dependencies gorm.io/gorm, time
 * @refs service/store/result_store.go
 */

package models

import "time"

// ValidationResult 持久化的验证结果记录
type ValidationResult struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceName   string    `gorm:"type:varchar(500);index;not null" json:"source_name"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
	TotalRows    int       `json:"total_rows"`
	TotalColumns int       `json:"total_columns"`
	QualityScore float64   `json:"quality_score"`
	ResultData   JSONB     `gorm:"type:jsonb" json:"result_data,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (ValidationResult) TableName() string {
	return "validation_results"
}

// QualityMetric 单项质量指标记录
type QualityMetric struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceName  string    `gorm:"type:varchar(500);index;not null" json:"source_name"`
	MetricName  string    `gorm:"type:varchar(100);index;not null" json:"metric_name"`
	MetricValue float64   `json:"metric_value"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (QualityMetric) TableName() string {
	return "quality_metrics"
}

// ValidationSummary 验证结果摘要，用于历史列表和仪表板
type ValidationSummary struct {
	Source       string    `json:"source"`
	QualityScore float64   `json:"quality_score"`
	Timestamp    time.Time `json:"timestamp"`
	TotalRows    int       `json:"total_rows"`
	TotalColumns int       `json:"total_columns"`
	CreatedAt    time.Time `json:"created_at"`
}

// DailyTrend 按天聚合的质量趋势
type DailyTrend struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	Count        int     `json:"validation_count"`
}

// SourceTrend 按数据源聚合的质量趋势
type SourceTrend struct {
	Source       string  `json:"source"`
	AverageScore float64 `json:"average_score"`
	Count        int     `json:"validation_count"`
}

// QualityTrends 质量趋势查询结果
type QualityTrends struct {
	DailyTrends  []DailyTrend  `json:"daily_trends"`
	SourceTrends []SourceTrend `json:"source_trends"`
}

// DashboardSummary 仪表板汇总数据
type DashboardSummary struct {
	TotalValidations    int64               `json:"total_validations"`
	AverageQualityScore float64             `json:"average_quality_score"`
	UniqueSources       int64               `json:"unique_sources"`
	RecentValidations   []ValidationSummary `json:"recent_validations"`
	QualityDistribution map[string]int      `json:"quality_distribution"`
}
