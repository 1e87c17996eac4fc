/*
 * @module service/validation/templates
 * @description 常用质量规则模板，供前端快速创建规则使用
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 模板查询 -> 填入列名参数 -> 规则评估
 * @rules 模板只是规则的参数化样例，column 留空由调用方填写
 * @dependencies dqguard-service/service/models
 * @refs api/controllers/validation_controller.go
 */

package validation

import "dqguard-service/service/models"

// RuleTemplate 规则模板
type RuleTemplate struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Rule        models.Rule `json:"rule"`
}

// RuleTemplates 返回内置规则模板列表
func RuleTemplates() []RuleTemplate {
	return []RuleTemplate{
		{
			Name:        "email_format",
			Description: "校验列值符合邮箱格式",
			Rule: models.Rule{
				Name: "email_format_check",
				Kind: models.RuleKindRegex,
				Params: models.JSONB{
					"pattern": `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
				},
			},
		},
		{
			Name:        "phone_format",
			Description: "校验列值符合手机号格式",
			Rule: models.Rule{
				Name: "phone_format_check",
				Kind: models.RuleKindRegex,
				Params: models.JSONB{
					"pattern": `1[3-9]\d{9}`,
				},
			},
		},
		{
			Name:        "percentage_range",
			Description: "校验数值在 0 到 100 之间",
			Rule: models.Rule{
				Name: "percentage_range_check",
				Kind: models.RuleKindRange,
				Params: models.JSONB{
					"min": 0,
					"max": 100,
				},
			},
		},
		{
			Name:        "completeness",
			Description: "校验列无空值",
			Rule: models.Rule{
				Name: "completeness_check",
				Kind: models.RuleKindNull,
			},
		},
		{
			Name:        "uniqueness",
			Description: "校验列值全部唯一",
			Rule: models.Rule{
				Name: "uniqueness_check",
				Kind: models.RuleKindUnique,
			},
		},
	}
}
