package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/delivery"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/engine"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/llm"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/logger"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
)

type runner interface {
	Run(ctx context.Context, req dm.AnalysisRequest) (*engine.Outcome, error)
}

// 测试中替换
var (
	newChatModel = llm.NewChatModel
	newEngine    = func(cfg *config.Config, opts ...engine.Option) (runner, error) {
		return engine.NewEngine(cfg, opts...)
	}
	newDeliverer = func(ctx context.Context, cfg *config.Config) (delivery.Channel, error) {
		return delivery.FromConfig(ctx, cfg.Delivery)
	}
)

type analyzeOptions struct {
	industry string
	product  string
	format   string
	htmlPath string
	deliver  []string
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a competitor analysis",
		Long: `Discover competitors for a product, read their pages and produce a
structured competitive analysis.

Examples:
  competitor_radar analyze --industry FinTech --product "Budgeting app for freelancers"
  competitor_radar analyze -i "Developer tools" -p "CI cache service" --format json
  competitor_radar analyze -i EdTech -p "Flashcards with spaced repetition" --html report.html
  competitor_radar analyze -i EdTech -p "..." --deliver pm@example.com --deliver s3://reports/edtech/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, *configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.industry, "industry", "i", "", "Industry category (run the categories command for the list)")
	cmd.Flags().StringVarP(&opts.product, "product", "p", "", "Short product description (max 300 characters)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "Output format: markdown or json")
	cmd.Flags().StringVar(&opts.htmlPath, "html", "", "Also write a standalone HTML report to this path")
	cmd.Flags().StringSliceVar(&opts.deliver, "deliver", nil, "Deliver the report to an email address or s3://bucket/key (repeatable)")
	_ = cmd.MarkFlagRequired("industry")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func runAnalyze(cmd *cobra.Command, configPath string, opts *analyzeOptions) error {
	if opts.format != "markdown" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want markdown or json)", opts.format)
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	stderr := cmd.ErrOrStderr()
	// stdout 只输出报告
	if err := logger.InitLoggerTo(stderr, cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cm, err := newChatModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init model: %w", err)
	}
	eng, err := newEngine(cfg,
		engine.WithChatModel(cm),
		engine.WithProgress(func(stage engine.Stage, status string) {
			fmt.Fprintf(stderr, "%s %s %s\n", StyleAccent.Render("○"), StyleInfo.Render(string(stage)), StyleMuted.Render(status))
		}),
	)
	if err != nil {
		return err
	}

	outcome, err := eng.Run(ctx, dm.AnalysisRequest{Industry: opts.industry, ProductSummary: opts.product})
	if err != nil {
		printFailure(stderr, err)
		return err
	}

	if outcome.Status == engine.StatusNoCompetitorsFound {
		fmt.Fprintln(stderr, BoxStyle(ColorWarning).Render(StyleWarning.Render("No competitors found")+"\n"+
			"The search returned no usable sources. Try a broader product description."))
		if opts.format == "json" {
			return writeJSON(cmd.OutOrStdout(), outcome)
		}
		return nil
	}
	if outcome.Partial() {
		fmt.Fprintln(stderr, StyleWarning.Render(fmt.Sprintf("! %d of %d sources could not be retrieved", outcome.FailedFetches(), len(outcome.Documents))))
	}

	doc, err := buildDocument(ctx, cm, cfg, outcome)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		if err := writeJSON(cmd.OutOrStdout(), outcome); err != nil {
			return err
		}
	default:
		if err := writeMarkdown(cmd.OutOrStdout(), doc.Markdown); err != nil {
			return err
		}
	}

	if opts.htmlPath != "" {
		if err := os.WriteFile(opts.htmlPath, []byte(doc.HTML), 0o644); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
		fmt.Fprintln(stderr, StyleSuccess.Render("✓ HTML report written to "+opts.htmlPath))
	}

	if len(opts.deliver) > 0 {
		return deliverAll(ctx, stderr, cfg, doc, opts.deliver)
	}
	return nil
}

func buildDocument(ctx context.Context, cm model.BaseChatModel, cfg *config.Config, outcome *engine.Outcome) (*report.Document, error) {
	title := report.Headline(ctx, cm, llm.FastTier(cfg.LLM), outcome.Request, outcome.Result)
	return report.Render(report.Data{
		Title:   title,
		Request: outcome.Request,
		Result:  outcome.Result,
		Sources: outcome.Documents,
	})
}

func deliverAll(ctx context.Context, w io.Writer, cfg *config.Config, doc *report.Document, destinations []string) error {
	ch, err := newDeliverer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init delivery: %w", err)
	}

	var errs []error
	for _, dest := range destinations {
		if err := ch.Deliver(ctx, doc, dest); err != nil {
			fmt.Fprintln(w, StyleError.Render("✗ delivery to "+dest+" failed: ")+err.Error())
			errs = append(errs, err)
			continue
		}
		fmt.Fprintln(w, StyleSuccess.Render("✓ delivered to "+dest))
	}
	return errors.Join(errs...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeMarkdown(w io.Writer, md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		out = md
	}
	_, err = io.WriteString(w, out)
	return err
}

func printFailure(w io.Writer, err error) {
	kind := engine.KindOf(err)
	var b strings.Builder
	b.WriteString(StyleError.Render("Analysis failed"))
	if kind != "" {
		b.WriteString(StyleMuted.Render(" (" + string(kind) + ")"))
	}

	var pe *engine.PipelineError
	if errors.As(err, &pe) {
		b.WriteString("\nstage: " + string(pe.Stage))
	}
	var se *engine.SchemaError
	if errors.As(err, &se) {
		for _, v := range se.Violations {
			b.WriteString("\n  - " + v)
		}
	}
	fmt.Fprintln(w, BoxStyle(ColorError).Render(b.String()))
}
