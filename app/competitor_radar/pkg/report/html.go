package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

const htmlTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Title }}</title>
    <style>
        :root {
            --primary-color: #2563eb;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 960px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 40px; padding: 20px 0; }
        h1 { font-size: 2.2rem; margin: 0 0 10px 0; }
        .meta { color: var(--text-secondary); }
        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 30px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.05);
            border: 1px solid var(--border-color);
        }
        .card h2 { margin-top: 0; border-bottom: 2px solid var(--primary-color); padding-bottom: 8px; display: inline-block; }
        .profile-grid { display: grid; gap: 16px; grid-template-columns: 1fr; }
        @media (min-width: 768px) { .profile-grid { grid-template-columns: 1fr 1fr; } }
        .profile { background: #f8fafc; padding: 16px; border-radius: 8px; border-left: 4px solid #cbd5e1; }
        .profile h3 { margin-top: 0; }
        .profile dt { font-weight: bold; color: #475569; }
        .profile dd { margin: 0 0 8px 0; }
        table.matrix { border-collapse: collapse; width: 100%; }
        table.matrix th, table.matrix td { border: 1px solid var(--border-color); padding: 8px; text-align: center; }
        table.matrix td:first-child, table.matrix th:first-child { text-align: left; }
        .mark-present { color: #166534; background: #dcfce7; }
        .mark-absent { color: #991b1b; background: #fee2e2; }
        .mark-unclear { color: #64748b; }
        .section { padding: 12px 16px; border-radius: 8px; margin-bottom: 12px; background: #f8fafc; border-left: 4px solid #cbd5e1; }
        .section-opps { border-left-color: #22c55e; background: #f0fdf4; }
        .section-risks { border-left-color: #ef4444; background: #fef2f2; }
        .section-actions { border-left-color: #a855f7; background: #faf5ff; }
        .ref-list { list-style: none; padding: 0; font-size: 0.9rem; }
        .ref-list a { color: var(--primary-color); text-decoration: none; }
        .ref-failed { color: #94a3b8; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>{{ .Title }}</h1>
            <div class="meta">{{ .Request.Industry }} • {{ len .Result.CompetitorSummaries }} competitors • {{ .GeneratedAt.Format "2006-01-02 15:04" }}</div>
            <p>{{ .Request.ProductSummary }}</p>
        </header>

        <div class="card">
            <h2>Competitors</h2>
            <div class="profile-grid">
                {{range .Result.CompetitorSummaries}}
                <div class="profile">
                    <h3>{{.Name}}</h3>
                    <p>{{.Description}}</p>
                    <dl>
                        <dt>Website</dt><dd>{{.WebsiteURL}}</dd>
                        <dt>Pricing</dt><dd>{{.PricingModel}}</dd>
                        <dt>Target market</dt><dd>{{.TargetMarket}}</dd>
                        <dt>Market position</dt><dd>{{.MarketPosition}}</dd>
                        <dt>Unique value</dt><dd>{{.UniqueValueProposition}}</dd>
                        {{if .KeyFeatures}}<dt>Key features</dt><dd>{{join .KeyFeatures}}</dd>{{end}}
                        {{if .Strengths}}<dt>Strengths</dt><dd>{{join .Strengths}}</dd>{{end}}
                        {{if .Weaknesses}}<dt>Weaknesses</dt><dd>{{join .Weaknesses}}</dd>{{end}}
                        {{if .TechnologyStack}}<dt>Technology</dt><dd>{{join .TechnologyStack}}</dd>{{end}}
                    </dl>
                </div>
                {{end}}
            </div>
        </div>

        {{if .Matrix.Rows}}
        <div class="card">
            <h2>Feature Comparison</h2>
            <table class="matrix">
                <tr>{{range .Matrix.Header}}<th>{{.}}</th>{{end}}</tr>
                {{range .Matrix.Rows}}
                <tr>
                    <td>{{.Feature}}</td>
                    {{range .Marks}}<td class="{{markClass .}}">{{.}}</td>{{end}}
                </tr>
                {{end}}
            </table>
        </div>
        {{end}}

        {{with .Result.StrategicAnalysis}}
        <div class="card">
            <h2>Strategic Analysis</h2>
            <div class="section"><h3>Market Positioning</h3><p>{{.MarketPositioning}}</p></div>
            <div class="section section-opps"><h3>Competitive Advantages</h3><ul>{{range .CompetitiveAdvantages}}<li>{{.}}</li>{{end}}</ul></div>
            <div class="section"><h3>Areas of Overlap</h3><ul>{{range .AreasOfOverlap}}<li>{{.}}</li>{{end}}</ul></div>
            <div class="section section-opps"><h3>Gaps &amp; Opportunities</h3><ul>{{range .GapsAndOpportunities}}<li>{{.}}</li>{{end}}</ul></div>
            <div class="section"><h3>Recommended Differentiators</h3><ul>{{range .RecommendedDifferentiators}}<li>{{.}}</li>{{end}}</ul></div>
            <div class="section"><h3>Go-to-Market Strategy</h3><p>{{.GoToMarketStrategy}}</p></div>
            <div class="section section-risks"><h3>Threat Assessment</h3><p>{{.ThreatAssessment}}</p></div>
            <div class="section"><h3>Market Size</h3><p>{{.MarketSizeInsights}}</p></div>
            <div class="section section-actions"><h3>Next Steps</h3><ul>{{range .NextSteps}}<li>{{.}}</li>{{end}}</ul></div>
        </div>
        {{end}}

        {{if .Sources}}
        <div class="card">
            <h2>Sources</h2>
            <ul class="ref-list">
                {{range .Sources}}
                {{if .FetchFailed}}<li class="ref-failed">{{.Locator}} (not retrieved)</li>{{else}}<li><a href="{{.Locator}}" target="_blank">{{if .Title}}{{.Title}}{{else}}{{.Locator}}{{end}}</a></li>{{end}}
                {{end}}
            </ul>
        </div>
        {{end}}
    </div>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join":      joinItems,
	"markClass": markClass,
}).Parse(htmlTpl))

type matrixRow struct {
	Feature string
	Marks   []dm.Mark
}

type matrixView struct {
	Header []string
	Rows   []matrixRow
}

type htmlData struct {
	Data
	Matrix matrixView
}

// HTML 渲染独立的 HTML 报告
func HTML(data Data) (string, error) {
	if data.Result == nil {
		return "", fmt.Errorf("render html: analysis result is empty")
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, htmlData{Data: data, Matrix: buildMatrix(data.Result.ComparisonMatrix)}); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func buildMatrix(rows []dm.ComparisonRow) matrixView {
	cols := dm.MatrixColumns(rows)
	view := matrixView{Header: append([]string{dm.FeatureColumn}, cols...)}
	for _, row := range rows {
		marks := make([]dm.Mark, 0, len(cols))
		for _, c := range cols {
			marks = append(marks, row.Mark(c))
		}
		view.Rows = append(view.Rows, matrixRow{Feature: row.Feature(), Marks: marks})
	}
	return view
}

func joinItems(items []string) string {
	return strings.Join(items, ", ")
}

func markClass(m dm.Mark) string {
	switch m {
	case dm.MarkPresent:
		return "mark-present"
	case dm.MarkAbsent:
		return "mark-absent"
	}
	return "mark-unclear"
}
