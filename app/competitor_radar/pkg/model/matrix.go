package model

import "sort"

// FeatureColumn 对比矩阵中必须存在的特性列
const FeatureColumn = "Feature"

// Mark 对比矩阵中的三态标记
type Mark string

const (
	MarkPresent Mark = "✓"
	MarkAbsent  Mark = "✗"
	MarkUnclear Mark = "?"
)

// Valid 是否为合法的三态标记
func (m Mark) Valid() bool {
	switch m {
	case MarkPresent, MarkAbsent, MarkUnclear:
		return true
	}
	return false
}

// ComparisonRow 对比矩阵的一行：列名 -> 值。
// "Feature" 列保存特性名，其余列保存三态标记。
type ComparisonRow map[string]string

// Feature 返回该行的特性名
func (r ComparisonRow) Feature() string {
	return r[FeatureColumn]
}

// Mark 返回某列的标记，列不存在时视为 unclear
func (r ComparisonRow) Mark(column string) Mark {
	v, ok := r[column]
	if !ok {
		return MarkUnclear
	}
	return Mark(v)
}

// Columns 返回除 Feature 外的列名，按字母序
func (r ComparisonRow) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		if k != FeatureColumn {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

// MatrixColumns 汇总整个矩阵出现过的列，保持首次出现的顺序
func MatrixColumns(rows []ComparisonRow) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, row := range rows {
		for _, c := range row.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}
