/*
 * @module service/store/result_store
 * @description 验证结果存储，负责质量报告持久化、历史查询及仪表板聚合
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 报告持久化 -> 指标行派生 -> 历史/趋势/汇总查询
 * @rules 每次持久化同时写入结果行与派生指标行；趋势聚合在应用层完成以兼容多数据库方言
 * @dependencies gorm.io/gorm
 * @refs service/models/quality_models.go, service/validation/validation_service.go
 */

package store

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"dqguard-service/service/models"
)

// ResultStore 验证结果存储
type ResultStore struct {
	db *gorm.DB
}

// NewResultStore 创建验证结果存储实例
func NewResultStore(db *gorm.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Persist 持久化质量报告，同时派生质量分数和空值率两条指标记录
func (s *ResultStore) Persist(report *models.ValidationReport) error {
	resultData, err := report.ToJSONB()
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}

	record := models.ValidationResult{
		SourceName:   report.Source,
		Timestamp:    report.Timestamp,
		TotalRows:    report.TotalRows,
		TotalColumns: report.TotalColumns,
		QualityScore: report.QualityScore,
		ResultData:   resultData,
	}

	metrics := []models.QualityMetric{
		{
			SourceName:  report.Source,
			MetricName:  "quality_score",
			MetricValue: report.QualityScore,
			Timestamp:   report.Timestamp,
		},
	}
	if nullPct, ok := overallNullPercentage(report); ok {
		metrics = append(metrics, models.QualityMetric{
			SourceName:  report.Source,
			MetricName:  "null_percentage",
			MetricValue: nullPct,
			Timestamp:   report.Timestamp,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("写入验证结果失败: %w", err)
		}
		if err := tx.Create(&metrics).Error; err != nil {
			return fmt.Errorf("写入质量指标失败: %w", err)
		}
		return nil
	})
}

// History 按时间倒序查询验证历史摘要
func (s *ResultStore) History(limit int) ([]models.ValidationSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []models.ValidationResult
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询验证历史失败: %w", err)
	}

	summaries := make([]models.ValidationSummary, len(records))
	for i, r := range records {
		summaries[i] = models.ValidationSummary{
			Source:       r.SourceName,
			QualityScore: r.QualityScore,
			Timestamp:    r.Timestamp,
			TotalRows:    r.TotalRows,
			TotalColumns: r.TotalColumns,
			CreatedAt:    r.CreatedAt,
		}
	}
	return summaries, nil
}

// Summary 仪表板汇总：总量、均分、数据源数、最近记录和分数分布
func (s *ResultStore) Summary() (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{
		QualityDistribution: map[string]int{
			"excellent": 0,
			"good":      0,
			"fair":      0,
			"poor":      0,
		},
	}

	if err := s.db.Model(&models.ValidationResult{}).Count(&summary.TotalValidations).Error; err != nil {
		return nil, fmt.Errorf("统计验证总数失败: %w", err)
	}

	if summary.TotalValidations > 0 {
		var avg float64
		err := s.db.Model(&models.ValidationResult{}).
			Select("AVG(quality_score)").Scan(&avg).Error
		if err != nil {
			return nil, fmt.Errorf("计算平均质量分失败: %w", err)
		}
		summary.AverageQualityScore = round2(avg)
	}

	err := s.db.Model(&models.ValidationResult{}).
		Distinct("source_name").Count(&summary.UniqueSources).Error
	if err != nil {
		return nil, fmt.Errorf("统计数据源数量失败: %w", err)
	}

	recent, err := s.History(10)
	if err != nil {
		return nil, err
	}
	summary.RecentValidations = recent

	var scores []float64
	err = s.db.Model(&models.ValidationResult{}).
		Pluck("quality_score", &scores).Error
	if err != nil {
		return nil, fmt.Errorf("查询质量分布失败: %w", err)
	}
	for _, score := range scores {
		summary.QualityDistribution[qualityBand(score)]++
	}

	return summary, nil
}

// Trends 质量趋势：近 days 天内按天和按数据源的平均分。
// 聚合在应用层完成，SQLite 和 PostgreSQL 的日期函数不同
func (s *ResultStore) Trends(days int) (*models.QualityTrends, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var records []models.ValidationResult
	err := s.db.Where("timestamp >= ?", since).
		Order("timestamp ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询趋势数据失败: %w", err)
	}

	type bucket struct {
		sum   float64
		count int
	}
	byDay := make(map[string]*bucket)
	bySource := make(map[string]*bucket)
	for _, r := range records {
		day := r.Timestamp.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = &bucket{}
		}
		byDay[day].sum += r.QualityScore
		byDay[day].count++

		if bySource[r.SourceName] == nil {
			bySource[r.SourceName] = &bucket{}
		}
		bySource[r.SourceName].sum += r.QualityScore
		bySource[r.SourceName].count++
	}

	trends := &models.QualityTrends{
		DailyTrends:  make([]models.DailyTrend, 0, len(byDay)),
		SourceTrends: make([]models.SourceTrend, 0, len(bySource)),
	}
	for day, b := range byDay {
		trends.DailyTrends = append(trends.DailyTrends, models.DailyTrend{
			Date:         day,
			AverageScore: round2(b.sum / float64(b.count)),
			Count:        b.count,
		})
	}
	sort.Slice(trends.DailyTrends, func(i, j int) bool {
		return trends.DailyTrends[i].Date < trends.DailyTrends[j].Date
	})

	for source, b := range bySource {
		trends.SourceTrends = append(trends.SourceTrends, models.SourceTrend{
			Source:       source,
			AverageScore: round2(b.sum / float64(b.count)),
			Count:        b.count,
		})
	}
	sort.Slice(trends.SourceTrends, func(i, j int) bool {
		return trends.SourceTrends[i].Source < trends.SourceTrends[j].Source
	})

	return trends, nil
}

// overallNullPercentage 从报告中提取全局空值率，只有画像报告包含该项
func overallNullPercentage(report *models.ValidationReport) (float64, bool) {
	nullCheck, ok := report.Results["null_check"]
	if !ok {
		return 0, false
	}
	raw, ok := nullCheck["total_nulls"]
	if !ok {
		return 0, false
	}
	totalNulls := cast.ToFloat64(raw)
	totalCells := report.TotalRows * report.TotalColumns
	if totalCells == 0 {
		return 0, true
	}
	return round2(100 * totalNulls / float64(totalCells)), true
}

// qualityBand 分数分档：>=90 excellent，>=70 good，>=50 fair，其余 poor
func qualityBand(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
