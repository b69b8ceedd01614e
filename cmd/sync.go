package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

func syncCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync immediately, bypassing the 24h gate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := model.ParseCategory(category)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runOnce(ctx, cmd, c)
		},
	}
	cmd.Flags().StringVarP(&category, "type", "t", string(model.CategoryMixed),
		"opportunity type: "+model.CategoryList())
	return cmd
}

func runOnce(ctx context.Context, cmd *cobra.Command, c model.Category) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orch.RunSync(ctx, c, model.TriggerCLI)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
