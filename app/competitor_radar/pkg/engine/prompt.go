package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

const systemPrompt = "You are a JSON generator. Output a single JSON object and nothing else: no markdown, no commentary."

const analysisInstructions = `You are a competitive intelligence analyst. Analyse the competitors described in the sources above for the given product.

Grounding rules:
- Only use information explicitly found in the supplied source content.
- Do NOT hallucinate or invent features, pricing, customers or technologies.
- When a fact is not present in the sources, write exactly "` + dm.NotSpecified + `". Never omit a field.
- Sources marked FETCH FAILED have no content. Do not describe them beyond what other sources state.

Output requirements:
- "competitor_summaries": one profile per competitor identified in the sources.
- "comparison_matrix": one row per notable feature. Every row has a "Feature" key holding the feature name, a "Your Product" column, and one column per competitor name.
  Each non-Feature cell is exactly one of "✓" (feature present), "✗" (feature absent) or "?" (unclear from the sources).
- "strategic_analysis": positioning, advantages, overlap, gaps, differentiators, go-to-market, threats, market size and concrete next steps for the product.
- Lists may be empty but must be JSON arrays of strings.

The response must be valid JSON matching this schema:
`

var schemaDescriptor = sync.OnceValue(func() string {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	data, err := json.MarshalIndent(r.Reflect(&dm.AnalysisResult{}), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
})

// SchemaDescriptor 由 Go 类型生成的 AnalysisResult JSON Schema
func SchemaDescriptor() string {
	return schemaDescriptor()
}

// BuildMessages 组装综合分析的模型输入
func BuildMessages(req dm.AnalysisRequest, docs []dm.RetrievedDocument) []*schema.Message {
	return []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: buildPrompt(req, docs)},
	}
}

func buildPrompt(req dm.AnalysisRequest, docs []dm.RetrievedDocument) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Industry: %s\n", req.Industry))
	sb.WriteString(fmt.Sprintf("Product: %s\n\n", req.ProductSummary))

	sb.WriteString(fmt.Sprintf("Competitor sources (%d):\n\n", len(docs)))
	for i, doc := range docs {
		if doc.FetchFailed {
			sb.WriteString(fmt.Sprintf("Source %d: %s\nFETCH FAILED: no content could be retrieved.\n\n", i+1, doc.Locator))
			continue
		}
		sb.WriteString(fmt.Sprintf("Source %d: %s\n", i+1, doc.Locator))
		if doc.Title != "" {
			sb.WriteString(fmt.Sprintf("Title: %s\n", doc.Title))
		}
		sb.WriteString(fmt.Sprintf("Content:\n%s\n\n", doc.Content))
	}

	sb.WriteString(analysisInstructions)
	sb.WriteString(SchemaDescriptor())
	return sb.String()
}
