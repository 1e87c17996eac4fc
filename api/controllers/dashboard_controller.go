/*
 * @module api/controllers/dashboard_controller
 * @description 仪表板控制器，提供质量汇总与趋势查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 请求接收 -> 聚合查询 -> 响应返回
 * @rules 仪表板接口只读，聚合口径与存储层保持一致
 * @dependencies dqguard-service/service/store
 * @refs api/routes.go, service/store/result_store.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"dqguard-service/service/store"
)

// DashboardController 仪表板控制器
type DashboardController struct {
	resultStore *store.ResultStore
}

// NewDashboardController 创建仪表板控制器实例
func NewDashboardController(resultStore *store.ResultStore) *DashboardController {
	return &DashboardController{resultStore: resultStore}
}

// GetSummary 查询仪表板汇总
// @Summary 查询仪表板汇总
// @Description 返回检测总量、平均质量分、数据源数量、最近检测及分数分布
// @Tags 仪表板
// @Produce json
// @Success 200 {object} APIResponse{data=models.DashboardSummary} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /dashboard/summary [get]
func (c *DashboardController) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.resultStore.Summary()
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询仪表板汇总失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询仪表板汇总成功",
		Data:   summary,
	})
}

// GetTrends 查询质量趋势
// @Summary 查询质量趋势
// @Description 返回近 N 天按天和按数据源聚合的平均质量分
// @Tags 仪表板
// @Produce json
// @Param days query int false "统计天数" default(30)
// @Success 200 {object} APIResponse{data=models.QualityTrends} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /dashboard/trends [get]
func (c *DashboardController) GetTrends(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	trends, err := c.resultStore.Trends(days)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询质量趋势失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询质量趋势成功",
		Data:   trends,
	})
}
