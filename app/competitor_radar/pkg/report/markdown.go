package report

import (
	"fmt"
	"strings"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

// Markdown 渲染 Markdown 报告，终端中交给 glamour 显示
func Markdown(data Data) string {
	var sb strings.Builder
	r := data.Result

	fmt.Fprintf(&sb, "# %s\n\n", data.Title)
	fmt.Fprintf(&sb, "**Industry:** %s  \n", data.Request.Industry)
	fmt.Fprintf(&sb, "**Product:** %s  \n", data.Request.ProductSummary)
	if !data.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "**Generated:** %s\n", data.GeneratedAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString("\n")

	sb.WriteString("## Competitors\n\n")
	for _, c := range r.CompetitorSummaries {
		fmt.Fprintf(&sb, "### %s\n\n", c.Name)
		fmt.Fprintf(&sb, "%s\n\n", c.Description)
		fmt.Fprintf(&sb, "- **Website:** %s\n", c.WebsiteURL)
		fmt.Fprintf(&sb, "- **Pricing:** %s\n", c.PricingModel)
		fmt.Fprintf(&sb, "- **Target market:** %s\n", c.TargetMarket)
		fmt.Fprintf(&sb, "- **Market position:** %s\n", c.MarketPosition)
		fmt.Fprintf(&sb, "- **Unique value:** %s\n", c.UniqueValueProposition)
		writeInlineList(&sb, "Key features", c.KeyFeatures)
		writeInlineList(&sb, "Strengths", c.Strengths)
		writeInlineList(&sb, "Weaknesses", c.Weaknesses)
		writeInlineList(&sb, "Technology", c.TechnologyStack)
		sb.WriteString("\n")
	}

	if len(r.ComparisonMatrix) > 0 {
		sb.WriteString("## Feature Comparison\n\n")
		writeMatrix(&sb, r.ComparisonMatrix)
		sb.WriteString("\n")
	}

	s := r.StrategicAnalysis
	sb.WriteString("## Strategic Analysis\n\n")
	fmt.Fprintf(&sb, "### Market Positioning\n\n%s\n\n", s.MarketPositioning)
	writeSection(&sb, "Competitive Advantages", s.CompetitiveAdvantages)
	writeSection(&sb, "Areas of Overlap", s.AreasOfOverlap)
	writeSection(&sb, "Gaps & Opportunities", s.GapsAndOpportunities)
	writeSection(&sb, "Recommended Differentiators", s.RecommendedDifferentiators)
	fmt.Fprintf(&sb, "### Go-to-Market Strategy\n\n%s\n\n", s.GoToMarketStrategy)
	fmt.Fprintf(&sb, "### Threat Assessment\n\n%s\n\n", s.ThreatAssessment)
	fmt.Fprintf(&sb, "### Market Size\n\n%s\n\n", s.MarketSizeInsights)
	writeSection(&sb, "Next Steps", s.NextSteps)

	if len(data.Sources) > 0 {
		sb.WriteString("## Sources\n\n")
		for i, d := range data.Sources {
			if d.FetchFailed {
				fmt.Fprintf(&sb, "%d. %s (not retrieved)\n", i+1, d.Locator)
				continue
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, d.Locator)
		}
	}

	return sb.String()
}

func writeInlineList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "- **%s:** %s\n", label, strings.Join(items, ", "))
}

func writeSection(sb *strings.Builder, heading string, items []string) {
	fmt.Fprintf(sb, "### %s\n\n", heading)
	if len(items) == 0 {
		sb.WriteString("_None identified._\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func writeMatrix(sb *strings.Builder, rows []dm.ComparisonRow) {
	cols := dm.MatrixColumns(rows)

	header := append([]string{dm.FeatureColumn}, cols...)
	sb.WriteString("| " + strings.Join(escapeCells(header), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")

	for _, row := range rows {
		cells := make([]string, 0, len(header))
		cells = append(cells, row.Feature())
		for _, c := range cols {
			cells = append(cells, string(row.Mark(c)))
		}
		sb.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return out
}
