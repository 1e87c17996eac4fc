/*
 * @module service/validation/validation_service
 * @description 质量检测服务，编排规则引擎、评分器与结果存储，输出完整质量报告
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 数据集 -> 规则评估/画像 -> 评分 -> 摘要 -> 持久化 -> 报告
 * @rules 报告生成与持久化解耦：持久化失败时报告仍随错误一并返回，由调用方分场景处理
 * @dependencies dqguard-service/service/quality, dqguard-service/service/store
 * @refs api/controllers/validation_controller.go, service/scheduler/runner.go
 */

package validation

import (
	"context"
	"math"
	"time"

	"dqguard-service/service/metrics"
	"dqguard-service/service/models"
	"dqguard-service/service/quality"
	"dqguard-service/service/store"
)

// ReportPersister 报告持久化能力
type ReportPersister interface {
	Persist(report *models.ValidationReport) error
}

// Service 质量检测服务
type Service struct {
	engine *quality.RuleEngine
	scorer *quality.QualityScorer
	store  ReportPersister
}

// NewService 创建质量检测服务
func NewService(resultStore *store.ResultStore) *Service {
	return &Service{
		engine: quality.NewRuleEngine(),
		scorer: quality.NewQualityScorer(),
		store:  resultStore,
	}
}

// NewServiceWith 以显式依赖创建服务，供测试注入
func NewServiceWith(persister ReportPersister) *Service {
	return &Service{
		engine: quality.NewRuleEngine(),
		scorer: quality.NewQualityScorer(),
		store:  persister,
	}
}

// ValidateDataset 画像模式检测：内置空值、类型、重复三项检查。
// 持久化失败时返回已生成的报告和错误
func (s *Service) ValidateDataset(_ context.Context, ds *models.Dataset) (*models.ValidationReport, error) {
	results := s.engine.Profile(ds)
	report := s.buildReport(ds, results)
	metrics.Validations.WithLabelValues("profile").Inc()

	if err := s.store.Persist(report); err != nil {
		return report, err
	}
	return report, nil
}

// ValidateWithRules 自定义规则模式检测。规则定义非法时立即返回，不产出报告
func (s *Service) ValidateWithRules(_ context.Context, ds *models.Dataset, rules []models.Rule) (*models.ValidationReport, error) {
	results, err := s.engine.Evaluate(ds, rules)
	if err != nil {
		return nil, err
	}

	report := s.buildReport(ds, results)
	metrics.Validations.WithLabelValues("rules").Inc()

	if err := s.store.Persist(report); err != nil {
		return report, err
	}
	return report, nil
}

// buildReport 组装质量报告：评分、时间戳与数据画像摘要
func (s *Service) buildReport(ds *models.Dataset, results models.ReportResults) *models.ValidationReport {
	return &models.ValidationReport{
		Source:       ds.Source,
		Timestamp:    time.Now().UTC(),
		TotalRows:    ds.RowCount(),
		TotalColumns: ds.ColumnCount(),
		Results:      results,
		QualityScore: s.scorer.Score(results),
		Summary:      buildSummary(ds),
	}
}

// buildSummary 数据画像摘要：数据规模、列类型分布与逐列画像
func buildSummary(ds *models.Dataset) models.JSONB {
	typeCounts := make(map[string]interface{})
	columns := make([]interface{}, 0, ds.ColumnCount())
	for i := range ds.Columns {
		col := &ds.Columns[i]
		key := string(col.Type)
		if n, ok := typeCounts[key].(int); ok {
			typeCounts[key] = n + 1
		} else {
			typeCounts[key] = 1
		}
		columns = append(columns, columnProfile(col, ds.RowCount()))
	}

	return models.JSONB{
		"data_shape":   map[string]interface{}{"rows": ds.RowCount(), "columns": ds.ColumnCount()},
		"column_types": typeCounts,
		"columns":      columns,
	}
}

// columnProfile 单列画像：空值率、唯一值率、采样值，数值列附加极值和均值，
// 文本列附加长度统计
func columnProfile(col *models.Column, rowCount int) map[string]interface{} {
	profile := map[string]interface{}{
		"name":              col.Name,
		"dtype":             string(col.Type),
		"null_count":        col.NullCount(),
		"null_percentage":   ratio(col.NullCount(), rowCount),
		"unique_values":     col.DistinctCount(),
		"unique_percentage": ratio(col.DistinctCount(), rowCount),
		"sample_values":     col.SampleValues(3),
	}

	switch col.Type {
	case models.ColumnTypeNumeric:
		var minVal, maxVal, sum float64
		count := 0
		for _, cell := range col.Cells {
			num, ok := cell.(float64)
			if !ok {
				continue
			}
			if count == 0 || num < minVal {
				minVal = num
			}
			if count == 0 || num > maxVal {
				maxVal = num
			}
			sum += num
			count++
		}
		if count > 0 {
			profile["min"] = minVal
			profile["max"] = maxVal
			profile["mean"] = round2(sum / float64(count))
		}
	case models.ColumnTypeText:
		var minLen, maxLen, totalLen int
		count := 0
		for _, cell := range col.Cells {
			str, ok := cell.(string)
			if !ok {
				continue
			}
			length := len([]rune(str))
			if count == 0 || length < minLen {
				minLen = length
			}
			if count == 0 || length > maxLen {
				maxLen = length
			}
			totalLen += length
			count++
		}
		if count > 0 {
			profile["min_length"] = minLen
			profile["max_length"] = maxLen
			profile["avg_length"] = round2(float64(totalLen) / float64(count))
		}
	}

	return profile
}

// ratio 占比百分数，保留两位小数，分母为零时返回 0
func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(part) / float64(total))
}

// round2 保留两位小数，四舍五入远离零
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
