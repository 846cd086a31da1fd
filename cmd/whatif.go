package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/d1vyadharsh1n1/MetroX/app"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
)

var (
	whatifTrain   string
	whatifHeadway float64
)

var whatifCmd = &cobra.Command{
	Use:   "whatif <scenario>",
	Short: "Plan a night, then project a scenario against it",
	Long: "Scenarios: " + whatif.ScenarioForceService + ", " + whatif.ScenarioSimulateFailure + ", " +
		whatif.ScenarioMaintenanceDelay + ", " + whatif.ScenarioHeadway,
	Args: cobra.ExactArgs(1),
	RunE: runWhatIf,
}

func init() {
	whatifCmd.Flags().StringVarP(&whatifTrain, "train", "t", "", "train id for per-train scenarios")
	whatifCmd.Flags().Float64Var(&whatifHeadway, "headway", 0, "headway in minutes for headway_analysis")
	rootCmd.AddCommand(whatifCmd)
}

func runWhatIf(cmd *cobra.Command, args []string) error {
	cfg, err := loadBatchConfig()
	if err != nil {
		return err
	}
	core, err := app.NewCore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = core.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if _, err := core.RunOnce(ctx); err != nil {
		return err
	}

	req := whatif.Request{Scenario: args[0], TrainID: whatifTrain}
	if cmd.Flags().Changed("headway") {
		req.Headway = &whatifHeadway
	}
	res, err := core.WhatIf.Run(req)
	if err != nil {
		return fmt.Errorf("what-if: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
