package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/d1vyadharsh1n1/MetroX/app"
	"github.com/d1vyadharsh1n1/MetroX/config"
	"github.com/d1vyadharsh1n1/MetroX/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "metrox",
	Short: "MetroX train induction control plane",
	Long: "Runs the nightly induction planner behind an HTTP API: planning runs that\n" +
		"can pause for operator input, risk-gated manual overrides and what-if analysis.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (YAML or JSON)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads .env, then the config file when it exists.
func loadConfig() (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load(config.DefaultPath(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadBatchConfig is loadConfig for one-shot commands whose stdout carries data.
func loadBatchConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Logging.ApplyStderr(); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
