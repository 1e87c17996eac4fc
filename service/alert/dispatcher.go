/*
 * @module service/alert/dispatcher
 * @description 告警调度器，质量分数低于阈值时按配置渠道投递告警消息
 * @architecture 分层架构 - 告警通知层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 阈值判定 -> 消息格式化 -> 渠道投递 -> 结果计数
 * @rules 分数严格低于阈值才触发；投递失败返回错误由调用方记录，不中断主流程
 * @dependencies net/smtp, net/http
 * @refs service/scheduler/runner.go, service/models/schedule.go
 */

package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"dqguard-service/service/metrics"
	"dqguard-service/service/models"
)

// ChannelSender 单渠道告警发送能力
type ChannelSender interface {
	Send(ctx context.Context, settings models.JSONB, message string, report *models.ValidationReport) error
}

// Dispatcher 告警调度器
type Dispatcher struct {
	senders map[string]ChannelSender
}

// NewDispatcher 创建告警调度器并注册内置渠道
func NewDispatcher() *Dispatcher {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return &Dispatcher{
		senders: map[string]ChannelSender{
			models.AlertChannelEmail:          &EmailSender{},
			models.AlertChannelChatWebhook:    &ChatWebhookSender{client: httpClient},
			models.AlertChannelGenericWebhook: &GenericWebhookSender{client: httpClient},
		},
	}
}

// RegisterSender 注册或覆盖渠道发送器
func (d *Dispatcher) RegisterSender(channel string, sender ChannelSender) {
	d.senders[channel] = sender
}

// Dispatch 按告警配置投递报告。未启用或分数达标时静默跳过
func (d *Dispatcher) Dispatch(ctx context.Context, cfg *models.AlertConfig, report *models.ValidationReport) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if report.QualityScore >= cfg.QualityThreshold {
		slog.Debug("质量分数达标，跳过告警",
			"source", report.Source, "score", report.QualityScore, "threshold", cfg.QualityThreshold)
		return nil
	}

	sender, ok := d.senders[cfg.Channel]
	if !ok {
		metrics.AlertAttempts.WithLabelValues(cfg.Channel, "failure").Inc()
		return fmt.Errorf("未知的告警渠道: %s", cfg.Channel)
	}

	message := FormatAlertMessage(report, cfg.QualityThreshold)
	if err := sender.Send(ctx, cfg.ChannelSettings, message, report); err != nil {
		metrics.AlertAttempts.WithLabelValues(cfg.Channel, "failure").Inc()
		return fmt.Errorf("渠道 %s 告警投递失败: %w", cfg.Channel, err)
	}

	metrics.AlertAttempts.WithLabelValues(cfg.Channel, "success").Inc()
	slog.Info("告警已投递",
		"channel", cfg.Channel, "source", report.Source, "score", report.QualityScore)
	return nil
}

// FormatAlertMessage 构造人读告警消息
func FormatAlertMessage(report *models.ValidationReport, threshold float64) string {
	var b strings.Builder
	b.WriteString("数据质量告警\n")
	fmt.Fprintf(&b, "数据源: %s\n", report.Source)
	fmt.Fprintf(&b, "质量分数: %.2f（阈值 %.2f）\n", report.QualityScore, threshold)
	fmt.Fprintf(&b, "等级: %s\n", QualityBand(report.QualityScore))
	fmt.Fprintf(&b, "数据规模: %d 行 × %d 列\n", report.TotalRows, report.TotalColumns)
	fmt.Fprintf(&b, "检测时间: %s", report.Timestamp.Format("2006-01-02 15:04:05"))
	return b.String()
}

// QualityBand 分数分档描述：>=90 优秀，>=70 良好，>=50 一般，其余较差
func QualityBand(score float64) string {
	switch {
	case score >= 90:
		return "优秀"
	case score >= 70:
		return "良好"
	case score >= 50:
		return "一般"
	default:
		return "较差"
	}
}

// EmailSender SMTP 邮件渠道
type EmailSender struct{}

// Send 发送告警邮件，必填配置缺失时直接失败
func (s *EmailSender) Send(_ context.Context, settings models.JSONB, message string, report *models.ValidationReport) error {
	server := cast.ToString(settings["smtp_server"])
	port := cast.ToString(settings["smtp_port"])
	username := cast.ToString(settings["username"])
	password := cast.ToString(settings["password"])
	toEmail := cast.ToString(settings["to_email"])

	if username == "" || password == "" || toEmail == "" {
		return fmt.Errorf("邮件配置不完整：username、password、to_email 均为必填")
	}
	if server == "" {
		server = "smtp.gmail.com"
	}
	if port == "" {
		port = "587"
	}

	subject := fmt.Sprintf("数据质量告警 - %s", report.Source)
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		username, toEmail, subject, message)

	auth := smtp.PlainAuth("", username, password, server)
	return smtp.SendMail(server+":"+port, auth, username, []string{toEmail}, []byte(body))
}

// ChatWebhookSender 聊天机器人 webhook 渠道
type ChatWebhookSender struct {
	client *http.Client
}

// Send 向聊天 webhook 推送告警文本
func (s *ChatWebhookSender) Send(ctx context.Context, settings models.JSONB, message string, _ *models.ValidationReport) error {
	webhookURL := cast.ToString(settings["webhook_url"])
	if webhookURL == "" {
		return fmt.Errorf("未配置 webhook_url")
	}

	payload := map[string]interface{}{
		"text":       message,
		"username":   "DQ-Guard",
		"icon_emoji": ":warning:",
	}
	return postJSON(ctx, s.client, webhookURL, payload)
}

// GenericWebhookSender 通用 webhook 渠道，携带完整报告
type GenericWebhookSender struct {
	client *http.Client
}

// Send 向通用 webhook 推送结构化告警
func (s *GenericWebhookSender) Send(ctx context.Context, settings models.JSONB, message string, report *models.ValidationReport) error {
	webhookURL := cast.ToString(settings["webhook_url"])
	if webhookURL == "" {
		return fmt.Errorf("未配置 webhook_url")
	}

	payload := map[string]interface{}{
		"alert_type": "data_quality",
		"source":     "dq-guard",
		"message":    message,
		"report":     report,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	return postJSON(ctx, s.client, webhookURL, payload)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化告警负载失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook 返回状态码 %d", resp.StatusCode)
	}
	return nil
}
