/*
 * @module service/scheduler/cadence
 * @description 调度节奏表达式解析，将业务节奏词汇映射为 cron 调度计划
 * @architecture 分层架构 - 调度管理层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 节奏表达式 -> cron 调度计划 -> 下次执行时间
 * @rules 不认识的表达式不报错，返回 nil 计划，任务惰性保留
 * @dependencies github.com/robfig/cron/v3
 * @refs service/scheduler/registry.go, service/scheduler/runner.go
 */

package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ParseCadence 解析节奏表达式为 cron 调度计划。
// 识别的表达式为封闭集合：daily/hourly/weekly、every_N_minutes、every_N_hours，
// 集合外的表达式一律返回 nil 计划且不报错
func ParseCadence(expr string) cron.Schedule {
	switch strings.ToLower(strings.TrimSpace(expr)) {
	case "daily":
		return mustCron("0 9 * * *")
	case "hourly":
		return mustCron("0 * * * *")
	case "weekly":
		return mustCron("0 9 * * 1")
	}

	if d, ok := parseEveryInterval(expr); ok {
		return cron.Every(d)
	}
	return nil
}

// NextExecution 计算表达式从 from 起的下次执行时间，表达式无法识别时返回 nil
func NextExecution(expr string, from time.Time) *time.Time {
	schedule := ParseCadence(expr)
	if schedule == nil {
		return nil
	}
	next := schedule.Next(from)
	return &next
}

// parseEveryInterval 解析 every_N_minutes / every_N_hours 形式的间隔表达式
func parseEveryInterval(expr string) (time.Duration, bool) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(expr)), "_")
	if len(parts) != 3 || parts[0] != "every" {
		return 0, false
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil || n <= 0 {
		return 0, false
	}

	switch parts[2] {
	case "minutes", "minute":
		return time.Duration(n) * time.Minute, true
	case "hours", "hour":
		return time.Duration(n) * time.Hour, true
	default:
		return 0, false
	}
}

func mustCron(spec string) cron.Schedule {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		panic(fmt.Sprintf("内置 cron 表达式非法: %s", spec))
	}
	return schedule
}
