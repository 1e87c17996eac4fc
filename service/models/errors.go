/*
 * @module service/models/errors
 * @description 错误分类定义：输入错误、数据加载错误等哨兵错误类型
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 错误产生 -> 包装 -> 按类型分流处理
 * @rules 输入错误立即返回调用方，评估错误降级为失败检查结果，投递错误只记录日志
 * @dependencies errors, fmt
 * @refs service/quality/rule_engine.go, service/scheduler/registry.go
 */

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRule 规则定义无效（名称缺失、未知类型等）
	ErrInvalidRule = errors.New("无效的规则定义")

	// ErrInvalidJob 调度任务定义无效（调度表达式为空、数据源缺失等）
	ErrInvalidJob = errors.New("无效的调度任务定义")

	// ErrUnsupportedSource 不支持的数据源类型
	ErrUnsupportedSource = errors.New("不支持的数据源类型")
)

// LoadError 数据加载失败，包装底层原因
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("数据源 %s 加载失败: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
