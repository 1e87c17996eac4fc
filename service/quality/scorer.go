/*
 * @module service/quality/scorer
 * @description 质量评分器，从检查结果集合计算 0-100 的总体质量分数
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 检查结果遍历 -> 通过/总数计数 -> 百分比评分
 * @rules 只统计暴露 passed 布尔值的结果项；顶层 passed 优先于内嵌 columns；无可计数项时得满分
 * @dependencies dqguard-service/service/models
 * @refs service/quality/rule_engine.go
 */

package quality

import "dqguard-service/service/models"

// QualityScorer 质量评分器
type QualityScorer struct{}

// NewQualityScorer 创建质量评分器实例
func NewQualityScorer() *QualityScorer {
	return &QualityScorer{}
}

// Score 计算总体质量分数：通过的检查数占可计数检查数的百分比，保留两位小数。
// 顶层带 passed 的结果计一次；否则展开 columns 一层，内嵌带 passed 的每列各计一次；
// 两者都没有的结果（如画像类输出）不参与计分。没有任何可计数项时返回 100
func (s *QualityScorer) Score(results models.ReportResults) float64 {
	total := 0
	passed := 0

	for _, result := range results {
		if flag, ok := result["passed"].(bool); ok {
			total++
			if flag {
				passed++
			}
			continue
		}

		for _, entry := range columnEntries(result["columns"]) {
			if flag, ok := entry["passed"].(bool); ok {
				total++
				if flag {
					passed++
				}
			}
		}
	}

	if total == 0 {
		return 100.0
	}
	return round2(100 * float64(passed) / float64(total))
}

// columnEntries 规整 columns 字段的两种形态：内存构造的嵌套 map 和
// JSONB 反序列化得到的 map[string]interface{}
func columnEntries(raw interface{}) []map[string]interface{} {
	switch cols := raw.(type) {
	case map[string]map[string]interface{}:
		entries := make([]map[string]interface{}, 0, len(cols))
		for _, entry := range cols {
			entries = append(entries, entry)
		}
		return entries
	case map[string]interface{}:
		entries := make([]map[string]interface{}, 0, len(cols))
		for _, v := range cols {
			if entry, ok := v.(map[string]interface{}); ok {
				entries = append(entries, entry)
			}
		}
		return entries
	default:
		return nil
	}
}
