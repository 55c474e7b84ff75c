package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/delivery"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/engine"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
)

type stubModel struct{}

func (stubModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage("CodeBot leads the pack", nil), nil
}

func (stubModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type stubRunner struct {
	outcome *engine.Outcome
	err     error
	got     dm.AnalysisRequest
}

func (s *stubRunner) Run(_ context.Context, req dm.AnalysisRequest) (*engine.Outcome, error) {
	s.got = req
	return s.outcome, s.err
}

type stubDeliverer struct {
	destinations []string
	titles       []string
}

func (s *stubDeliverer) Deliver(_ context.Context, doc *report.Document, dest string) error {
	s.destinations = append(s.destinations, dest)
	s.titles = append(s.titles, doc.Title)
	if dest == "bad@example.com" {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func completedOutcome() *engine.Outcome {
	return &engine.Outcome{
		RunID:    "run-1",
		Status:   engine.StatusCompleted,
		Request:  dm.AnalysisRequest{Industry: "FinTech", ProductSummary: "Budgeting app"},
		Locators: []dm.SourceLocator{"https://a.example"},
		Documents: []dm.RetrievedDocument{
			{Locator: "https://a.example", Content: "a"},
		},
		Result: &dm.AnalysisResult{
			CompetitorSummaries: []dm.CompetitorProfile{{Name: "CodeBot"}},
			ComparisonMatrix:    []dm.ComparisonRow{{"Feature": "Sync", "CodeBot": "✓"}},
		},
	}
}

func withStubs(t *testing.T, r *stubRunner, d *stubDeliverer) {
	t.Helper()
	origModel, origEngine, origDeliverer := newChatModel, newEngine, newDeliverer
	t.Cleanup(func() {
		newChatModel, newEngine, newDeliverer = origModel, origEngine, origDeliverer
	})

	newChatModel = func(context.Context, *config.Config) (model.BaseChatModel, error) {
		return stubModel{}, nil
	}
	newEngine = func(*config.Config, ...engine.Option) (runner, error) {
		return r, nil
	}
	newDeliverer = func(context.Context, *config.Config) (delivery.Channel, error) {
		return d, nil
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAnalyze_JSON(t *testing.T) {
	r := &stubRunner{outcome: completedOutcome()}
	withStubs(t, r, &stubDeliverer{})

	stdout, _, err := execute(t, "analyze", "-i", "FinTech", "-p", "Budgeting app", "--format", "json")
	require.NoError(t, err)

	var got engine.Outcome
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, engine.StatusCompleted, got.Status)
	assert.Equal(t, "CodeBot", got.Result.CompetitorSummaries[0].Name)
	assert.Equal(t, dm.AnalysisRequest{Industry: "FinTech", ProductSummary: "Budgeting app"}, r.got)
}

func TestAnalyze_MarkdownAndHTML(t *testing.T) {
	withStubs(t, &stubRunner{outcome: completedOutcome()}, &stubDeliverer{})
	htmlPath := filepath.Join(t.TempDir(), "report.html")

	stdout, _, err := execute(t, "analyze", "-i", "FinTech", "-p", "Budgeting app", "--html", htmlPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "CodeBot")

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>CodeBot leads the pack</title>")
}

func TestAnalyze_NoCompetitors(t *testing.T) {
	withStubs(t, &stubRunner{outcome: &engine.Outcome{Status: engine.StatusNoCompetitorsFound}}, &stubDeliverer{})

	stdout, stderr, err := execute(t, "analyze", "-i", "FinTech", "-p", "Budgeting app")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No competitors found")
}

func TestAnalyze_PipelineFailure(t *testing.T) {
	err := &engine.PipelineError{
		Stage: engine.StageSynthesis,
		Kind:  engine.KindSynthesisSchemaFailure,
		Err:   &engine.SchemaError{Violations: []string{"strategic_analysis.threat_assessment: required field is missing"}},
	}
	withStubs(t, &stubRunner{err: err}, &stubDeliverer{})

	_, stderr, runErr := execute(t, "analyze", "-i", "FinTech", "-p", "Budgeting app")
	require.Error(t, runErr)
	assert.ErrorIs(t, runErr, engine.ErrSchemaViolation)
	assert.Contains(t, stderr, "SynthesisSchemaFailure")
	assert.Contains(t, stderr, "threat_assessment")
}

func TestAnalyze_Deliver(t *testing.T) {
	d := &stubDeliverer{}
	withStubs(t, &stubRunner{outcome: completedOutcome()}, d)

	_, stderr, err := execute(t, "analyze", "-i", "FinTech", "-p", "Budgeting app", "--format", "json",
		"--deliver", "pm@example.com", "--deliver", "bad@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailbox unavailable")
	assert.Equal(t, []string{"pm@example.com", "bad@example.com"}, d.destinations)
	assert.Equal(t, "CodeBot leads the pack", d.titles[0])
	assert.Contains(t, stderr, "delivered to pm@example.com")
}

func TestAnalyze_Flags(t *testing.T) {
	withStubs(t, &stubRunner{outcome: completedOutcome()}, &stubDeliverer{})

	_, _, err := execute(t, "analyze", "-i", "FinTech")
	assert.Error(t, err)

	_, _, err = execute(t, "analyze", "-i", "FinTech", "-p", "x", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCategories(t *testing.T) {
	stdout, _, err := execute(t, "categories")
	require.NoError(t, err)
	for _, c := range dm.DefaultCategories {
		assert.Contains(t, stdout, c)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "competitor_radar dev")
}
