/*
 * @module service/loader/loader
 * @description 数据加载器，按数据源描述符从文件、HTTP 接口或数据库表加载内存数据集
 * @architecture 分层架构 - 数据接入层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 数据源描述符 -> 按类型分发 -> 解析归一化 -> 内存数据集
 * @rules 任何加载失败包装为 LoadError 返回；单元格统一经 NormalizeCell 归一化
 * @dependencies gorm.io/gorm, golang.org/x/text
 * @refs service/models/dataset.go, service/scheduler/runner.go
 */

package loader

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gorm.io/gorm"

	"dqguard-service/service/models"
)

// 默认单文件大小上限（MB）
const defaultMaxFileSizeMB = 100

// 数据库表名只允许常规标识符，防止注入
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Loader 数据加载器
type Loader struct {
	db            *gorm.DB
	httpClient    *http.Client
	maxFileSizeMB int64
}

// NewLoader 创建数据加载器，db 可为 nil（此时数据库源不可用）
func NewLoader(db *gorm.DB) *Loader {
	return &Loader{
		db:            db,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		maxFileSizeMB: defaultMaxFileSizeMB,
	}
}

// Load 按描述符加载数据集
func (l *Loader) Load(ctx context.Context, desc models.DataSourceDescriptor) (*models.Dataset, error) {
	switch desc.Type {
	case models.SourceTypeFile:
		return l.loadFile(desc)
	case models.SourceTypeAPI:
		return l.loadAPI(ctx, desc)
	case models.SourceTypeDatabase:
		return l.loadDatabase(desc)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSource, desc.Type)
	}
}

// loadFile 从本地文件加载，格式按扩展名或显式 format 判定
func (l *Loader) loadFile(desc models.DataSourceDescriptor) (*models.Dataset, error) {
	info, err := os.Stat(desc.Location)
	if err != nil {
		return nil, &models.LoadError{Source: desc.Location, Err: err}
	}
	if info.Size() > l.maxFileSizeMB*1024*1024 {
		return nil, &models.LoadError{
			Source: desc.Location,
			Err:    fmt.Errorf("文件大小 %d 字节超过 %dMB 限制", info.Size(), l.maxFileSizeMB),
		}
	}

	f, err := os.Open(desc.Location)
	if err != nil {
		return nil, &models.LoadError{Source: desc.Location, Err: err}
	}
	defer f.Close()

	format := desc.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(desc.Location), ".")
	}
	return l.ParseFile(f, filepath.Base(desc.Location), format, desc.Charset)
}

// ParseFile 解析文件内容流，供文件源和上传接口共用。
// 支持 csv 与 json 格式，charset 为 gbk 时先做编码转换
func (l *Loader) ParseFile(r io.Reader, name, format, charset string) (*models.Dataset, error) {
	if strings.EqualFold(charset, "gbk") || strings.EqualFold(charset, "gb2312") {
		r = transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	}

	switch strings.ToLower(format) {
	case "csv":
		return parseCSV(r, name)
	case "json":
		return parseJSON(r, name)
	default:
		return nil, &models.LoadError{
			Source: name,
			Err:    fmt.Errorf("不支持的文件格式: %s", format),
		}
	}
}

// loadAPI 从 HTTP 接口加载 JSON 数组
func (l *Loader) loadAPI(ctx context.Context, desc models.DataSourceDescriptor) (*models.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.Location, nil)
	if err != nil {
		return nil, &models.LoadError{Source: desc.Location, Err: err}
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &models.LoadError{Source: desc.Location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.LoadError{
			Source: desc.Location,
			Err:    fmt.Errorf("接口返回状态码 %d", resp.StatusCode),
		}
	}
	return parseJSON(resp.Body, desc.Location)
}

// loadDatabase 从数据库表加载全量行
func (l *Loader) loadDatabase(desc models.DataSourceDescriptor) (*models.Dataset, error) {
	if l.db == nil {
		return nil, &models.LoadError{
			Source: desc.Location,
			Err:    fmt.Errorf("数据库连接未配置"),
		}
	}
	if !tableNamePattern.MatchString(desc.Location) {
		return nil, &models.LoadError{
			Source: desc.Location,
			Err:    fmt.Errorf("非法的表名: %s", desc.Location),
		}
	}

	var rows []map[string]interface{}
	if err := l.db.Table(desc.Location).Find(&rows).Error; err != nil {
		return nil, &models.LoadError{Source: desc.Location, Err: err}
	}
	return models.DatasetFromRecords(rows, desc.Location), nil
}

// parseCSV 解析 CSV，首行为表头，空单元格视为空值
func parseCSV(r io.Reader, source string) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &models.LoadError{Source: source, Err: err}
	}
	if len(records) == 0 {
		return nil, &models.LoadError{Source: source, Err: fmt.Errorf("CSV 文件为空")}
	}

	header := records[0]
	rows := records[1:]

	ds := models.NewDataset(source)
	for colIdx, name := range header {
		cells := make([]interface{}, len(rows))
		for rowIdx, row := range rows {
			if colIdx < len(row) {
				cells[rowIdx] = parseCSVCell(row[colIdx])
			}
		}
		ds.AddColumn(name, cells)
	}
	return ds, nil
}

// parseCSVCell 解释文本单元格：空串为空值，可解析的数字和布尔值转为对应类型
func parseCSVCell(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if num, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return num
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return trimmed
}

// parseJSON 解析 JSON 记录数组，兼容 {"data": [...]} 包装
func parseJSON(r io.Reader, source string) (*models.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.LoadError{Source: source, Err: err}
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapper struct {
			Data []map[string]interface{} `json:"data"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil || wrapper.Data == nil {
			return nil, &models.LoadError{Source: source, Err: fmt.Errorf("JSON 不是记录数组: %w", err)}
		}
		records = wrapper.Data
	}

	return models.DatasetFromRecords(records, source), nil
}
