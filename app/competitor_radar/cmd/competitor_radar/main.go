package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "competitor_radar",
		Short: "Competitor Radar - competitive intelligence reports from live web sources",
		Long: `Competitor Radar discovers competitors for a product, reads their public
pages and asks an LLM for a structured competitive analysis.

Commands:
  analyze     Run an analysis and print the report
  categories  List the industries that can be analysed
  version     Show version info

Quick Start:
  1. export TAVILY_API_KEY=... OPENAI_API_KEY=...
  2. competitor_radar categories
  3. competitor_radar analyze --industry FinTech --product "Budgeting app for freelancers"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to config file (falls back to defaults and environment when missing)")

	root.AddCommand(
		newAnalyzeCmd(&configPath),
		newCategoriesCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln(StyleError.Render("✗ " + err.Error()))
		stop()
		os.Exit(1)
	}
}
