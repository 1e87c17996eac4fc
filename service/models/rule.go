/*
 * @module service/models/rule
 * @description 数据质量规则与检查结果模型，定义六种规则类型的封闭集合和报告结构
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 规则定义 -> 规则评估 -> 检查结果 -> 质量报告
 * @rules 规则类型为封闭枚举，按类型标签分发，不使用反射查找
 * @dependencies encoding/json, time
 * @refs service/quality/rule_engine.go, service/quality/scorer.go
 */

package models

import (
	"encoding/json"
	"time"
)

// RuleKind 规则类型，封闭集合
type RuleKind string

const (
	RuleKindNull      RuleKind = "null_check"
	RuleKindType      RuleKind = "type_check"
	RuleKindUnique    RuleKind = "unique_check"
	RuleKindRange     RuleKind = "range_check"
	RuleKindRegex     RuleKind = "regex_check"
	RuleKindDuplicate RuleKind = "duplicate_check"
)

// Valid 检查规则类型是否在封闭集合内
func (k RuleKind) Valid() bool {
	switch k {
	case RuleKindNull, RuleKindType, RuleKindUnique, RuleKindRange, RuleKindRegex, RuleKindDuplicate:
		return true
	}
	return false
}

// Rule 数据质量规则，调用方持有，不单独持久化
type Rule struct {
	Name   string   `json:"name"`
	Kind   RuleKind `json:"type"`
	Column string   `json:"column,omitempty"`
	Params JSONB    `json:"params,omitempty"`
}

// CheckResult 单条规则的检查结果，包含 passed、各度量及可选的 error 信息
type CheckResult map[string]interface{}

// Passed 检查结果是否通过
func (r CheckResult) Passed() bool {
	passed, _ := r["passed"].(bool)
	return passed
}

// ErrorMessage 检查结果的错误信息，无错误时返回空串
func (r CheckResult) ErrorMessage() string {
	msg, _ := r["error"].(string)
	return msg
}

// FailedCheck 构建失败的检查结果，规则内部故障降级为失败结果而不是抛出
func FailedCheck(column, message string) CheckResult {
	result := CheckResult{
		"passed": false,
		"error":  message,
	}
	if column != "" {
		result["column"] = column
	}
	return result
}

// ReportResults 报告结果集合：自定义规则模式下按规则名平铺，
// 画像模式下条目包含 columns 嵌套的按列摘要
type ReportResults map[string]CheckResult

// ValidationReport 一次评估的完整结果
type ValidationReport struct {
	Source       string        `json:"source"`
	Timestamp    time.Time     `json:"timestamp"`
	TotalRows    int           `json:"total_rows"`
	TotalColumns int           `json:"total_columns"`
	Results      ReportResults `json:"validation_results"`
	QualityScore float64       `json:"quality_score"`
	Summary      JSONB         `json:"summary,omitempty"`
}

// ToJSONB 将报告序列化为 JSONB，用于持久化
func (r *ValidationReport) ToJSONB() (JSONB, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var result JSONB
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
