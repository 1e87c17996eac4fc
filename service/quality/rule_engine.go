/*
 * @module service/quality/rule_engine
 * @description 数据质量规则引擎，按封闭的六种规则类型对数据集执行检查，支持画像模式和自定义规则模式
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 规则校验 -> 按类型分发检查 -> 检查结果汇总
 * @rules 评估为纯函数不修改数据集；任何规则内部故障降级为失败的检查结果，不跨越报告边界抛出
 * @dependencies dqguard-service/service/models, github.com/spf13/cast
 * @refs service/quality/scorer.go, service/models/rule.go
 */

package quality

import (
	"dqguard-service/service/models"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// 类型画像中采样值的数量上限
const sampleValueLimit = 3

// 重复检测模式
const (
	DuplicateModeRow    = "row"
	DuplicateModeColumn = "column"
)

// RuleEngine 规则引擎
type RuleEngine struct{}

// NewRuleEngine 创建规则引擎实例
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Profile 画像模式：对整个数据集执行空值、类型、重复三项内置检查
func (e *RuleEngine) Profile(ds *models.Dataset) models.ReportResults {
	return models.ReportResults{
		"null_check": e.checkNullsAll(ds),
		"type_check": e.checkTypesAll(ds),
		"duplicate_check": e.evaluateRule(ds, models.Rule{
			Kind:   models.RuleKindDuplicate,
			Params: models.JSONB{"mode": DuplicateModeRow},
		}),
	}
}

// Evaluate 自定义规则模式：按顺序应用规则列表，结果按规则名平铺。
// 规则定义本身非法（未知类型）立即返回输入错误
func (e *RuleEngine) Evaluate(ds *models.Dataset, rules []models.Rule) (models.ReportResults, error) {
	for _, rule := range rules {
		if !rule.Kind.Valid() {
			return nil, fmt.Errorf("%w: 规则 %s 的类型 %s 未知", models.ErrInvalidRule, rule.Name, rule.Kind)
		}
	}

	results := make(models.ReportResults, len(rules))
	for _, rule := range rules {
		name := rule.Name
		if name == "" {
			name = "unnamed_rule"
		}
		results[name] = e.evaluateRule(ds, rule)
	}
	return results, nil
}

// evaluateRule 评估单条规则，内部 panic 一律降级为失败结果
func (e *RuleEngine) evaluateRule(ds *models.Dataset, rule models.Rule) (result models.CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = models.FailedCheck(rule.Column, fmt.Sprintf("规则执行异常: %v", rec))
		}
	}()

	switch rule.Kind {
	case models.RuleKindNull:
		if rule.Column == "" {
			return e.checkNullsAll(ds)
		}
		return e.checkNulls(ds, rule.Column)
	case models.RuleKindType:
		return e.checkType(ds, rule.Column, rule.Params)
	case models.RuleKindUnique:
		return e.checkUniqueness(ds, rule.Column)
	case models.RuleKindRange:
		return e.checkRange(ds, rule.Column, rule.Params)
	case models.RuleKindRegex:
		return e.checkRegex(ds, rule.Column, rule.Params)
	case models.RuleKindDuplicate:
		return e.checkDuplicates(ds, rule.Column, rule.Params)
	default:
		return models.FailedCheck(rule.Column, fmt.Sprintf("未知的规则类型: %s", rule.Kind))
	}
}

// checkNulls 单列空值检查
func (e *RuleEngine) checkNulls(ds *models.Dataset, column string) models.CheckResult {
	col, ok := ds.Column(column)
	if !ok {
		return models.FailedCheck(column, fmt.Sprintf("列 %s 不存在", column))
	}

	nullCount := col.NullCount()
	totalCount := len(col.Cells)

	return models.CheckResult{
		"column":          column,
		"null_count":      nullCount,
		"total_count":     totalCount,
		"null_percentage": percentage(nullCount, totalCount),
		"passed":          nullCount == 0,
	}
}

// checkNullsAll 全数据集空值画像，按列汇总
func (e *RuleEngine) checkNullsAll(ds *models.Dataset) models.CheckResult {
	columns := make(map[string]interface{}, ds.ColumnCount())
	totalNulls := 0

	for i := range ds.Columns {
		col := &ds.Columns[i]
		nullCount := col.NullCount()
		totalNulls += nullCount
		columns[col.Name] = map[string]interface{}{
			"null_count":      nullCount,
			"null_percentage": percentage(nullCount, ds.RowCount()),
		}
	}

	return models.CheckResult{
		"type":        string(models.RuleKindNull),
		"columns":     columns,
		"total_nulls": totalNulls,
	}
}

// checkType 类型检查：给定列和期望类型时做包含匹配，否则输出全列类型画像
func (e *RuleEngine) checkType(ds *models.Dataset, column string, params models.JSONB) models.CheckResult {
	expected := cast.ToString(params["expected_type"])
	if column == "" || expected == "" {
		return e.checkTypesAll(ds)
	}

	col, ok := ds.Column(column)
	if !ok {
		return models.FailedCheck(column, fmt.Sprintf("列 %s 不存在", column))
	}

	actual := string(col.Type)
	return models.CheckResult{
		"column":        column,
		"expected_type": expected,
		"actual_type":   actual,
		"passed":        strings.Contains(strings.ToLower(actual), strings.ToLower(expected)),
	}
}

// checkTypesAll 全数据集类型画像
func (e *RuleEngine) checkTypesAll(ds *models.Dataset) models.CheckResult {
	columns := make(map[string]interface{}, ds.ColumnCount())
	for i := range ds.Columns {
		col := &ds.Columns[i]
		columns[col.Name] = map[string]interface{}{
			"dtype":         string(col.Type),
			"unique_values": col.DistinctCount(),
			"sample_values": col.SampleValues(sampleValueLimit),
		}
	}

	return models.CheckResult{
		"type":    string(models.RuleKindType),
		"columns": columns,
	}
}

// checkUniqueness 单列唯一性检查，重复数 = 总数 - 去重数
func (e *RuleEngine) checkUniqueness(ds *models.Dataset, column string) models.CheckResult {
	if column == "" {
		return models.FailedCheck("", "唯一性检查需要指定列")
	}
	col, ok := ds.Column(column)
	if !ok {
		return models.FailedCheck(column, fmt.Sprintf("列 %s 不存在", column))
	}

	totalCount := len(col.Cells)
	uniqueCount := col.DistinctCount()
	duplicateCount := totalCount - uniqueCount

	return models.CheckResult{
		"column":                column,
		"total_count":           totalCount,
		"unique_count":          uniqueCount,
		"duplicate_count":       duplicateCount,
		"uniqueness_percentage": percentage(uniqueCount, totalCount),
		"passed":                duplicateCount == 0,
	}
}

// checkRange 数值闭区间范围检查，非数值列降级为失败结果
func (e *RuleEngine) checkRange(ds *models.Dataset, column string, params models.JSONB) models.CheckResult {
	if column == "" {
		return models.FailedCheck("", "范围检查需要指定列")
	}
	col, ok := ds.Column(column)
	if !ok {
		return models.FailedCheck(column, fmt.Sprintf("列 %s 不存在", column))
	}

	if col.Type != models.ColumnTypeNumeric && col.Type != models.ColumnTypeNull {
		return models.FailedCheck(column, fmt.Sprintf("列 %s 不是数值类型", column))
	}

	minVal, hasMin, err := floatParam(params, "min")
	if err != nil {
		return models.FailedCheck(column, fmt.Sprintf("范围下界无效: %v", err))
	}
	maxVal, hasMax, err := floatParam(params, "max")
	if err != nil {
		return models.FailedCheck(column, fmt.Sprintf("范围上界无效: %v", err))
	}

	outOfRange := 0
	for _, cell := range col.Cells {
		num, isNum := cell.(float64)
		if !isNum {
			continue
		}
		if (hasMin && num < minVal) || (hasMax && num > maxVal) {
			outOfRange++
		}
	}

	result := models.CheckResult{
		"column":                  column,
		"out_of_range_count":      outOfRange,
		"out_of_range_percentage": percentage(outOfRange, ds.RowCount()),
		"passed":                  outOfRange == 0,
	}
	if hasMin {
		result["min_allowed"] = minVal
	}
	if hasMax {
		result["max_allowed"] = maxVal
	}
	return result
}

// checkRegex 正则检查：模式锚定后全值匹配，空单元格计为不匹配。
// 模式非法时降级为失败结果
func (e *RuleEngine) checkRegex(ds *models.Dataset, column string, params models.JSONB) models.CheckResult {
	if column == "" {
		return models.FailedCheck("", "正则检查需要指定列")
	}
	pattern := cast.ToString(params["pattern"])
	if pattern == "" {
		return models.FailedCheck(column, "未提供正则表达式")
	}

	col, ok := ds.Column(column)
	if !ok {
		return models.FailedCheck(column, fmt.Sprintf("列 %s 不存在", column))
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return models.FailedCheck(column, fmt.Sprintf("正则表达式无效: %v", err))
	}

	matches := 0
	for _, cell := range col.Cells {
		if cell == nil {
			continue
		}
		if re.MatchString(cast.ToString(cell)) {
			matches++
		}
	}
	nonMatches := len(col.Cells) - matches

	return models.CheckResult{
		"column":           column,
		"pattern":          pattern,
		"matches":          matches,
		"non_matches":      nonMatches,
		"match_percentage": percentage(matches, ds.RowCount()),
		"passed":           nonMatches == 0,
	}
}

// checkDuplicates 重复检测，模式必须通过 params.mode 显式指定：
// row 为整行重复，column 为指定列内重复
func (e *RuleEngine) checkDuplicates(ds *models.Dataset, column string, params models.JSONB) models.CheckResult {
	mode := cast.ToString(params["mode"])

	var duplicateCount int
	switch mode {
	case DuplicateModeRow:
		seen := make(map[string]struct{}, ds.RowCount())
		for i := 0; i < ds.RowCount(); i++ {
			seen[ds.RowKey(i)] = struct{}{}
		}
		duplicateCount = ds.RowCount() - len(seen)
	case DuplicateModeColumn:
		if column == "" {
			return models.FailedCheck("", "列模式的重复检测需要指定列")
		}
		col, ok := ds.Column(column)
		if !ok {
			return models.FailedCheck(column, fmt.Sprintf("列 %s 不存在", column))
		}
		duplicateCount = len(col.Cells) - col.DistinctCount()
	case "":
		return models.FailedCheck(column, "重复检测缺少 mode 参数（row 或 column）")
	default:
		return models.FailedCheck(column, fmt.Sprintf("未知的重复检测模式: %s", mode))
	}

	return models.CheckResult{
		"type":                 string(models.RuleKindDuplicate),
		"mode":                 mode,
		"duplicate_rows":       duplicateCount,
		"total_rows":           ds.RowCount(),
		"duplicate_percentage": percentage(duplicateCount, ds.RowCount()),
		"passed":               duplicateCount == 0,
	}
}

// floatParam 读取可选的数值参数
func floatParam(params models.JSONB, key string) (float64, bool, error) {
	raw, exists := params[key]
	if !exists || raw == nil {
		return 0, false, nil
	}
	val, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// percentage 百分比保留两位小数，四舍五入远离零，分母为零时返回 0
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(part) / float64(total))
}

// round2 保留两位小数，四舍五入远离零
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
