/*
 * @module service/models/dataset
 * @description 内存表格数据集模型，有序命名列和类型化单元格，供规则引擎评估使用
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 数据加载 -> 列类型推断 -> 规则评估 -> 随报告丢弃
 * @rules 数据集加载后不可变，行数等于各列长度，nil 表示空单元格
 * @dependencies github.com/spf13/cast
 * @refs service/quality/rule_engine.go, service/loader/loader.go
 */

package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// ColumnType 列数据类型
type ColumnType string

const (
	ColumnTypeNumeric ColumnType = "numeric"
	ColumnTypeText    ColumnType = "text"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeNull    ColumnType = "null"
	ColumnTypeMixed   ColumnType = "mixed"
)

// Column 数据列，单元格为 float64、string、bool 或 nil（空值）
type Column struct {
	Name  string
	Type  ColumnType
	Cells []interface{}
}

// NullCount 统计列中的空单元格数量
func (c *Column) NullCount() int {
	count := 0
	for _, cell := range c.Cells {
		if cell == nil {
			count++
		}
	}
	return count
}

// DistinctCount 统计列中不同取值的数量（空值视为一种取值）
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{}, len(c.Cells))
	for _, cell := range c.Cells {
		seen[cellKey(cell)] = struct{}{}
	}
	return len(seen)
}

// SampleValues 按首次出现顺序取前 n 个非空值
func (c *Column) SampleValues(n int) []interface{} {
	samples := make([]interface{}, 0, n)
	for _, cell := range c.Cells {
		if cell == nil {
			continue
		}
		samples = append(samples, cell)
		if len(samples) >= n {
			break
		}
	}
	return samples
}

// Dataset 内存数据集，列有序且行数一致
type Dataset struct {
	Source  string
	Columns []Column

	index map[string]int
}

// NewDataset 创建空数据集
func NewDataset(source string) *Dataset {
	return &Dataset{
		Source: source,
		index:  make(map[string]int),
	}
}

// AddColumn 追加一列并推断列类型，单元格须先经 NormalizeCell 归一化
func (d *Dataset) AddColumn(name string, cells []interface{}) {
	d.index[name] = len(d.Columns)
	d.Columns = append(d.Columns, Column{
		Name:  name,
		Type:  inferColumnType(cells),
		Cells: cells,
	})
}

// Column 按列名查找列
func (d *Dataset) Column(name string) (*Column, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.Columns[idx], true
}

// ColumnNames 按定义顺序返回所有列名
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// RowCount 数据集行数
func (d *Dataset) RowCount() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Cells)
}

// ColumnCount 数据集列数
func (d *Dataset) ColumnCount() int {
	return len(d.Columns)
}

// RowKey 生成第 i 行的指纹，用于整行重复检测
func (d *Dataset) RowKey(i int) string {
	parts := make([]string, len(d.Columns))
	for j := range d.Columns {
		parts[j] = cellKey(d.Columns[j].Cells[i])
	}
	return strings.Join(parts, "\x1f")
}

// DatasetFromRecords 从记录列表构建数据集，列名排序保证确定性
func DatasetFromRecords(records []map[string]interface{}, source string) *Dataset {
	nameSet := make(map[string]struct{})
	for _, record := range records {
		for name := range record {
			nameSet[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	ds := NewDataset(source)
	for _, name := range names {
		cells := make([]interface{}, len(records))
		for i, record := range records {
			cells[i] = NormalizeCell(record[name])
		}
		ds.AddColumn(name, cells)
	}
	return ds
}

// NormalizeCell 将任意单元格值归一化为 float64、bool、string 或 nil
func NormalizeCell(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val
	case float64:
		return val
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToFloat64(val)
	default:
		return cast.ToString(val)
	}
}

// inferColumnType 根据非空单元格推断列类型
func inferColumnType(cells []interface{}) ColumnType {
	var numeric, text, boolean int
	for _, cell := range cells {
		switch cell.(type) {
		case nil:
		case float64:
			numeric++
		case bool:
			boolean++
		default:
			text++
		}
	}

	nonNull := numeric + text + boolean
	switch {
	case nonNull == 0:
		return ColumnTypeNull
	case numeric == nonNull:
		return ColumnTypeNumeric
	case boolean == nonNull:
		return ColumnTypeBoolean
	case text == nonNull:
		return ColumnTypeText
	default:
		return ColumnTypeMixed
	}
}

// cellKey 单元格取值指纹，空值使用独立标记
func cellKey(cell interface{}) string {
	if cell == nil {
		return "\x00null"
	}
	return fmt.Sprintf("%T:%v", cell, cell)
}
