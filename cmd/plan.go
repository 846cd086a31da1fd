package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/d1vyadharsh1n1/MetroX/app"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/pkg/export"
)

var (
	planFormat  string
	planOutput  string
	planTimeout time.Duration
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one unattended planning run and print the schedule",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "table", "output format: table, json or csv")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "write to file instead of stdout")
	planCmd.Flags().DurationVar(&planTimeout, "timeout", time.Minute, "abort the run after this long")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	switch planFormat {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q", planFormat)
	}
	cfg, err := loadBatchConfig()
	if err != nil {
		return err
	}
	core, err := app.NewCore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = core.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), planTimeout)
	defer cancel()
	if _, err := core.RunOnce(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if planOutput != "" {
		f, err := os.Create(planOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	recs := core.Store.List()
	switch planFormat {
	case "json":
		return export.WriteJSON(out, recs)
	case "csv":
		return export.WriteCSV(out, recs)
	}
	for _, line := range export.Table(recs) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	c := model.StatusCounts(recs)
	_, err = fmt.Fprintf(out, "\nService: %d  Standby: %d  IBL: %d\n",
		c[model.StatusService], c[model.StatusStandby], c[model.StatusIBL])
	return err
}
