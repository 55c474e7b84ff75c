package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindTextList
	kindObject
	kindObjectList
	kindMatrix
)

type fieldSpec struct {
	name   string
	kind   fieldKind
	fields []fieldSpec
}

var profileFields = []fieldSpec{
	{name: "name", kind: kindText},
	{name: "website_url", kind: kindText},
	{name: "company_description", kind: kindText},
	{name: "key_features", kind: kindTextList},
	{name: "pricing_model", kind: kindText},
	{name: "target_market", kind: kindText},
	{name: "strengths", kind: kindTextList},
	{name: "weaknesses", kind: kindTextList},
	{name: "unique_value_proposition", kind: kindText},
	{name: "technology_stack", kind: kindTextList},
	{name: "market_position", kind: kindText},
}

var strategyFields = []fieldSpec{
	{name: "market_positioning", kind: kindText},
	{name: "competitive_advantages", kind: kindTextList},
	{name: "areas_of_overlap", kind: kindTextList},
	{name: "gaps_and_opportunities", kind: kindTextList},
	{name: "recommended_differentiators", kind: kindTextList},
	{name: "go_to_market_strategy", kind: kindText},
	{name: "threat_assessment", kind: kindText},
	{name: "market_size_insights", kind: kindText},
	{name: "next_steps", kind: kindTextList},
}

var resultFields = []fieldSpec{
	{name: "competitor_summaries", kind: kindObjectList, fields: profileFields},
	{name: "comparison_matrix", kind: kindMatrix},
	{name: "strategic_analysis", kind: kindObject, fields: strategyFields},
}

type validator struct {
	violations []string
}

func (v *validator) addf(format string, args ...any) {
	v.violations = append(v.violations, fmt.Sprintf(format, args...))
}

func fieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func (v *validator) object(path string, obj map[string]any, specs []fieldSpec) {
	for _, f := range specs {
		p := fieldPath(path, f.name)
		val, ok := obj[f.name]
		if !ok || val == nil {
			v.addf("%s: required field is missing", p)
			continue
		}

		switch f.kind {
		case kindText:
			s, ok := val.(string)
			if !ok {
				v.addf("%s: expected string, got %s", p, jsonType(val))
			} else if strings.TrimSpace(s) == "" {
				v.addf("%s: must not be empty, use %q when unknown", p, dm.NotSpecified)
			}

		case kindTextList:
			items, ok := val.([]any)
			if !ok {
				v.addf("%s: expected array of strings, got %s", p, jsonType(val))
				continue
			}
			for i, item := range items {
				if _, ok := item.(string); !ok {
					v.addf("%s[%d]: expected string, got %s", p, i, jsonType(item))
				}
			}

		case kindObject:
			m, ok := val.(map[string]any)
			if !ok {
				v.addf("%s: expected object, got %s", p, jsonType(val))
				continue
			}
			v.object(p, m, f.fields)

		case kindObjectList:
			items, ok := val.([]any)
			if !ok {
				v.addf("%s: expected array of objects, got %s", p, jsonType(val))
				continue
			}
			for i, item := range items {
				ip := fmt.Sprintf("%s[%d]", p, i)
				m, ok := item.(map[string]any)
				if !ok {
					v.addf("%s: expected object, got %s", ip, jsonType(item))
					continue
				}
				v.object(ip, m, f.fields)
			}

		case kindMatrix:
			rows, ok := val.([]any)
			if !ok {
				v.addf("%s: expected array of rows, got %s", p, jsonType(val))
				continue
			}
			for i, row := range rows {
				rp := fmt.Sprintf("%s[%d]", p, i)
				m, ok := row.(map[string]any)
				if !ok {
					v.addf("%s: expected object, got %s", rp, jsonType(row))
					continue
				}
				v.row(rp, m)
			}
		}
	}
}

func (v *validator) row(path string, row map[string]any) {
	feature, ok := row[dm.FeatureColumn]
	if !ok || feature == nil {
		v.addf("%s: missing %q column", path, dm.FeatureColumn)
	} else if s, ok := feature.(string); !ok {
		v.addf("%s.%s: expected string, got %s", path, dm.FeatureColumn, jsonType(feature))
	} else if strings.TrimSpace(s) == "" {
		v.addf("%s.%s: must not be empty", path, dm.FeatureColumn)
	}

	cols := make([]string, 0, len(row))
	for k := range row {
		if k != dm.FeatureColumn {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)

	for _, col := range cols {
		s, ok := row[col].(string)
		if !ok {
			v.addf("%s.%s: expected mark string, got %s", path, col, jsonType(row[col]))
			continue
		}
		if !dm.Mark(s).Valid() {
			v.addf("%s.%s: invalid mark %q, want one of ✓ ✗ ?", path, col, s)
		}
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// cleanJSON 去掉 markdown 代码块包裹和前后多余文本
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// ParseAnalysis 解析并校验模型输出。校验不通过时返回 *SchemaError，
// 不会返回部分填充的结果。
func ParseAnalysis(raw string) (*dm.AnalysisResult, error) {
	cleaned := cleanJSON(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &SchemaError{Violations: []string{fmt.Sprintf("response is not a JSON object: %v", err)}}
	}

	v := &validator{}
	v.object("", doc, resultFields)
	if len(v.violations) > 0 {
		return nil, &SchemaError{Violations: v.violations}
	}

	var result dm.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &SchemaError{Violations: []string{fmt.Sprintf("decode analysis: %v", err)}}
	}
	return &result, nil
}
