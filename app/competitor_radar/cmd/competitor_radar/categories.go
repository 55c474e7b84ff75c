package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
)

func newCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the industries that can be analysed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render("Industries"))
			for i, c := range cfg.Categories {
				fmt.Fprintf(out, "  %s %s\n", StyleMuted.Render(fmt.Sprintf("%2d.", i+1)), c)
			}
			return nil
		},
	}
}
