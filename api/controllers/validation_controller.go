/*
 * @module api/controllers/validation_controller
 * @description 质量检测控制器，提供文件上传检测、自定义规则检测、历史查询和规则模板接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 数据解析 -> 质量检测 -> 响应返回
 * @rules 规则定义错误返回400，数据加载错误返回400，持久化错误返回500
 * @dependencies dqguard-service/service/validation, dqguard-service/service/loader
 * @refs api/routes.go, service/validation/validation_service.go
 */

package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"dqguard-service/service/loader"
	"dqguard-service/service/models"
	"dqguard-service/service/store"
	"dqguard-service/service/validation"
)

// 上传文件大小上限
const maxUploadBytes = 100 << 20

// ValidationController 质量检测控制器
type ValidationController struct {
	loader      *loader.Loader
	validator   *validation.Service
	resultStore *store.ResultStore
}

// NewValidationController 创建质量检测控制器实例
func NewValidationController(l *loader.Loader, v *validation.Service, s *store.ResultStore) *ValidationController {
	return &ValidationController{
		loader:      l,
		validator:   v,
		resultStore: s,
	}
}

// ValidateUpload 上传文件并执行画像检测
// @Summary 上传文件质量检测
// @Description 上传 CSV 或 JSON 文件，执行内置的空值、类型、重复三项检查并评分
// @Tags 质量检测
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "待检测文件（csv/json）"
// @Param charset formData string false "文件编码" Enums(utf-8,gbk)
// @Success 200 {object} APIResponse{data=models.ValidationReport} "检测成功"
// @Failure 400 {object} APIResponse "文件解析失败"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /validation/upload [post]
func (c *ValidationController) ValidateUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "解析上传表单失败",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "缺少上传文件",
		})
		return
	}
	defer file.Close()

	format := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	charset := r.FormValue("charset")

	ds, err := c.loader.ParseFile(file, header.Filename, format, charset)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "文件解析失败: " + err.Error(),
		})
		return
	}

	report, err := c.validator.ValidateDataset(r.Context(), ds)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "检测结果持久化失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "质量检测完成",
		Data:   report,
	})
}

// ValidateWithRulesRequest 自定义规则检测请求
type ValidateWithRulesRequest struct {
	SourceName string                   `json:"source_name"`
	Data       []map[string]interface{} `json:"data"`
	Rules      []models.Rule            `json:"rules"`
}

// ValidateWithRules 对内联数据执行自定义规则检测
// @Summary 自定义规则质量检测
// @Description 对请求体内联的记录数组按给定规则列表执行检测并评分
// @Tags 质量检测
// @Accept json
// @Produce json
// @Param request body ValidateWithRulesRequest true "数据与规则"
// @Success 200 {object} APIResponse{data=models.ValidationReport} "检测成功"
// @Failure 400 {object} APIResponse "请求或规则定义错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /validation/rules [post]
func (c *ValidationController) ValidateWithRules(w http.ResponseWriter, r *http.Request) {
	var req ValidateWithRulesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}
	if len(req.Data) == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "数据记录为空",
		})
		return
	}

	source := req.SourceName
	if source == "" {
		source = "inline_data"
	}
	ds := models.DatasetFromRecords(req.Data, source)

	report, err := c.validator.ValidateWithRules(r.Context(), ds, req.Rules)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRule) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    err.Error(),
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "检测结果持久化失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "质量检测完成",
		Data:   report,
	})
}

// GetHistory 查询检测历史
// @Summary 查询检测历史
// @Description 按时间倒序返回历史检测摘要
// @Tags 质量检测
// @Produce json
// @Param limit query int false "返回条数" default(50)
// @Success 200 {object} APIResponse{data=[]models.ValidationSummary} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /validation/history [get]
func (c *ValidationController) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := c.resultStore.History(limit)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询检测历史失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询检测历史成功",
		Data:   summaries,
	})
}

// GetRuleTemplates 获取规则模板
// @Summary 获取规则模板列表
// @Description 返回内置的常用质量规则模板
// @Tags 质量检测
// @Produce json
// @Success 200 {object} APIResponse{data=[]validation.RuleTemplate} "查询成功"
// @Router /validation/rule-templates [get]
func (c *ValidationController) GetRuleTemplates(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取规则模板成功",
		Data:   validation.RuleTemplates(),
	})
}
