package report

import (
	"fmt"
	"time"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

// Data 渲染报告所需的数据
type Data struct {
	Title       string
	Request     dm.AnalysisRequest
	Result      *dm.AnalysisResult
	Sources     []dm.RetrievedDocument
	GeneratedAt time.Time
}

// Document 渲染完成的报告，可直接投递
type Document struct {
	Title       string
	Markdown    string
	HTML        string
	GeneratedAt time.Time
}

// Render 同时生成 Markdown 和 HTML 版本
func Render(data Data) (*Document, error) {
	if data.Result == nil {
		return nil, fmt.Errorf("render report: analysis result is empty")
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	if data.Title == "" {
		data.Title = DefaultTitle(data.Request, data.Result)
	}

	html, err := HTML(data)
	if err != nil {
		return nil, err
	}
	return &Document{
		Title:       data.Title,
		Markdown:    Markdown(data),
		HTML:        html,
		GeneratedAt: data.GeneratedAt,
	}, nil
}

// Filename 报告文件名，按生成时间命名
func (d *Document) Filename(ext string) string {
	return fmt.Sprintf("competitor-report-%s.%s", d.GeneratedAt.Format("20060102-150405"), ext)
}
