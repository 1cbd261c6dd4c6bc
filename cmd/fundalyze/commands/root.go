package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fundalyze/internal/analysis"
	"github.com/wonny/fundalyze/internal/scoreconfig"
	"github.com/wonny/fundalyze/pkg/config"
	"github.com/wonny/fundalyze/pkg/logger"
)

var (
	// Global flags
	scoringConfigPath string
	verbose           bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundalyze",
	Short: "Financial ratio computation and threshold scoring",
	Long: `fundalyze computes financial ratios from normalized statement data and
scores them against configurable threshold tables.

Examples:
  fundalyze analyze --file statements.json
  fundalyze analyze --entity ACME --period 2025-12-31
  fundalyze batch --period 2025-12-31 --type annual
  fundalyze check-config config/scoring/default.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&scoringConfigPath, "scoring-config", "", "scoring config file (default from SCORING_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// bootstrap loads the environment configuration and builds the logger
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// buildAnalyzer loads the scoring configuration and wires the pipeline.
// The --scoring-config flag overrides the environment; an empty path on
// both falls back to the built-in default table.
func buildAnalyzer(cfg *config.Config, log *logger.Logger) (*analysis.Analyzer, *scoreconfig.Config, error) {
	path := scoringConfigPath
	if path == "" {
		path = cfg.Analysis.ScoringConfigPath
	}
	if path == "" {
		analyzer, err := analysis.NewDefaultAnalyzer(log)
		return analyzer, nil, err
	}

	scoringCfg, err := scoreconfig.Load(path)
	if err != nil {
		return nil, nil, err
	}
	analyzer, err := analysis.NewAnalyzer(scoringCfg, log)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(map[string]interface{}{
		"table":  scoringCfg.Meta.TableID,
		"config": path,
	}).Debug("scoring config loaded")
	return analyzer, scoringCfg, nil
}
