/*
 * @module service/quality/rule_engine_test
 * @description 规则引擎单元测试，覆盖六种规则类型、画像模式和异常降级行为
 * @architecture 测试层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 构造数据集 -> 执行规则 -> 断言检查结果
 * @rules 测试不依赖数据库和网络
 * @dependencies github.com/stretchr/testify
 * @refs service/quality/rule_engine.go
 */

package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqguard-service/service/models"
)

func sampleDataset() *models.Dataset {
	ds := models.NewDataset("users.csv")
	ds.AddColumn("id", []interface{}{float64(1), float64(2), float64(3), float64(4)})
	ds.AddColumn("name", []interface{}{"alice", "bob", "carol", "dave"})
	ds.AddColumn("email", []interface{}{"alice@example.com", nil, "carol@example.com", "dave@example.com"})
	ds.AddColumn("age", []interface{}{float64(30), float64(25), nil, float64(41)})
	return ds
}

func TestNullCheckSingleColumn(t *testing.T) {
	engine := NewRuleEngine()
	ds := sampleDataset()

	result := engine.evaluateRule(ds, models.Rule{Kind: models.RuleKindNull, Column: "email"})
	assert.False(t, result.Passed())
	assert.Equal(t, 1, result["null_count"])
	assert.Equal(t, 4, result["total_count"])
	assert.Equal(t, 25.0, result["null_percentage"])

	result = engine.evaluateRule(ds, models.Rule{Kind: models.RuleKindNull, Column: "id"})
	assert.True(t, result.Passed())
	assert.Equal(t, 0, result["null_count"])
}

func TestNullCheckMissingColumn(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{Kind: models.RuleKindNull, Column: "missing"})

	assert.False(t, result.Passed())
	assert.NotEmpty(t, result.ErrorMessage())
}

func TestNullCheckWholeDataset(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{Kind: models.RuleKindNull})

	assert.Equal(t, 2, result["total_nulls"])

	columns, ok := result["columns"].(map[string]interface{})
	require.True(t, ok)
	emailProfile, ok := columns["email"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, emailProfile["null_count"])
	assert.Equal(t, 25.0, emailProfile["null_percentage"])

	// 画像条目不携带 passed，不参与评分
	_, hasPassed := emailProfile["passed"]
	assert.False(t, hasPassed)
}

func TestTypeCheck(t *testing.T) {
	engine := NewRuleEngine()
	ds := sampleDataset()

	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindType,
		Column: "id",
		Params: models.JSONB{"expected_type": "numeric"},
	})
	assert.True(t, result.Passed())
	assert.Equal(t, "numeric", result["actual_type"])

	result = engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindType,
		Column: "name",
		Params: models.JSONB{"expected_type": "numeric"},
	})
	assert.False(t, result.Passed())
}

func TestTypeCheckProfileMode(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{Kind: models.RuleKindType})

	columns, ok := result["columns"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, columns, 4)

	nameProfile, ok := columns["name"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "text", nameProfile["dtype"])
	assert.Equal(t, 4, nameProfile["unique_values"])
	assert.Len(t, nameProfile["sample_values"], 3)
}

func TestUniquenessCheck(t *testing.T) {
	engine := NewRuleEngine()
	ds := models.NewDataset("dup.csv")
	ds.AddColumn("code", []interface{}{"a", "b", "a", "c"})

	result := engine.evaluateRule(ds, models.Rule{Kind: models.RuleKindUnique, Column: "code"})
	assert.False(t, result.Passed())
	assert.Equal(t, 1, result["duplicate_count"])
	assert.Equal(t, 3, result["unique_count"])
	assert.Equal(t, 75.0, result["uniqueness_percentage"])
}

func TestRangeCheck(t *testing.T) {
	engine := NewRuleEngine()
	ds := sampleDataset()

	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindRange,
		Column: "age",
		Params: models.JSONB{"min": 18, "max": 35},
	})
	assert.False(t, result.Passed())
	assert.Equal(t, 1, result["out_of_range_count"])
	assert.Equal(t, 25.0, result["out_of_range_percentage"])

	// 缺失的边界视为无界
	result = engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindRange,
		Column: "age",
		Params: models.JSONB{"min": 0},
	})
	assert.True(t, result.Passed())
}

func TestRangeCheckSkipsNullCells(t *testing.T) {
	engine := NewRuleEngine()
	ds := sampleDataset()

	// age 列含一个空值，空值不计入越界
	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindRange,
		Column: "age",
		Params: models.JSONB{"min": 20, "max": 50},
	})
	assert.True(t, result.Passed())
	assert.Equal(t, 0, result["out_of_range_count"])
}

func TestRangeCheckNonNumericColumn(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{
		Kind:   models.RuleKindRange,
		Column: "name",
		Params: models.JSONB{"min": 0},
	})

	assert.False(t, result.Passed())
	assert.Contains(t, result.ErrorMessage(), "不是数值类型")
}

func TestRegexCheck(t *testing.T) {
	engine := NewRuleEngine()
	ds := sampleDataset()

	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindRegex,
		Column: "email",
		Params: models.JSONB{"pattern": `[a-z]+@example\.com`},
	})
	// 三个匹配，一个空值计为不匹配
	assert.False(t, result.Passed())
	assert.Equal(t, 3, result["matches"])
	assert.Equal(t, 1, result["non_matches"])
	assert.Equal(t, 75.0, result["match_percentage"])
}

func TestRegexCheckAnchored(t *testing.T) {
	engine := NewRuleEngine()
	ds := models.NewDataset("codes.csv")
	ds.AddColumn("code", []interface{}{"ab12", "xab12x"})

	// 模式做全值匹配，部分匹配不通过
	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindRegex,
		Column: "code",
		Params: models.JSONB{"pattern": `ab\d+`},
	})
	assert.Equal(t, 1, result["matches"])
	assert.Equal(t, 1, result["non_matches"])
}

func TestRegexCheckInvalidPattern(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{
		Kind:   models.RuleKindRegex,
		Column: "email",
		Params: models.JSONB{"pattern": `([unclosed`},
	})

	assert.False(t, result.Passed())
	assert.Contains(t, result.ErrorMessage(), "正则表达式无效")
}

func TestRegexCheckMissingPattern(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{
		Kind:   models.RuleKindRegex,
		Column: "email",
	})

	assert.False(t, result.Passed())
}

func TestDuplicateCheckRowMode(t *testing.T) {
	engine := NewRuleEngine()
	ds := models.NewDataset("rows.csv")
	ds.AddColumn("a", []interface{}{"x", "y", "x", "x"})
	ds.AddColumn("b", []interface{}{float64(1), float64(2), float64(1), float64(3)})

	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindDuplicate,
		Params: models.JSONB{"mode": DuplicateModeRow},
	})
	assert.False(t, result.Passed())
	assert.Equal(t, 1, result["duplicate_rows"])
	assert.Equal(t, 4, result["total_rows"])
	assert.Equal(t, 25.0, result["duplicate_percentage"])
}

func TestDuplicateCheckColumnMode(t *testing.T) {
	engine := NewRuleEngine()
	ds := models.NewDataset("rows.csv")
	ds.AddColumn("a", []interface{}{"x", "y", "x", "x"})

	result := engine.evaluateRule(ds, models.Rule{
		Kind:   models.RuleKindDuplicate,
		Column: "a",
		Params: models.JSONB{"mode": DuplicateModeColumn},
	})
	assert.Equal(t, 2, result["duplicate_rows"])
}

func TestDuplicateCheckRequiresMode(t *testing.T) {
	engine := NewRuleEngine()
	result := engine.evaluateRule(sampleDataset(), models.Rule{Kind: models.RuleKindDuplicate})

	assert.False(t, result.Passed())
	assert.Contains(t, result.ErrorMessage(), "mode")
}

func TestEvaluateRejectsUnknownKind(t *testing.T) {
	engine := NewRuleEngine()
	_, err := engine.Evaluate(sampleDataset(), []models.Rule{
		{Name: "ok", Kind: models.RuleKindNull, Column: "id"},
		{Name: "bad", Kind: "fancy_check"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidRule)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	engine := NewRuleEngine()
	ds := sampleDataset()
	rules := []models.Rule{
		{Name: "email_nulls", Kind: models.RuleKindNull, Column: "email"},
		{Name: "age_range", Kind: models.RuleKindRange, Column: "age", Params: models.JSONB{"min": 0, "max": 150}},
	}

	first, err := engine.Evaluate(ds, rules)
	require.NoError(t, err)
	second, err := engine.Evaluate(ds, rules)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, ds.RowCount())
}

func TestProfileContainsBuiltinChecks(t *testing.T) {
	engine := NewRuleEngine()
	results := engine.Profile(sampleDataset())

	require.Contains(t, results, "null_check")
	require.Contains(t, results, "type_check")
	require.Contains(t, results, "duplicate_check")

	// 画像中只有重复检查携带 passed
	assert.True(t, results["duplicate_check"].Passed())
	_, hasPassed := results["null_check"]["passed"]
	assert.False(t, hasPassed)
}
