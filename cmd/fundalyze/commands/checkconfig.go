package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundalyze/internal/scoreconfig"
)

// checkConfigCmd represents the check-config command
var checkConfigCmd = &cobra.Command{
	Use:   "check-config [path]",
	Short: "Validate a scoring configuration file",
	Long: `Loads a scoring configuration, runs full validation and prints its
table id and content hash. Exits non-zero on any problem.

Example:
  fundalyze check-config config/scoring/default.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckConfig,
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	cfg, err := scoreconfig.Load(args[0])
	if err != nil {
		return err
	}
	hash, err := scoreconfig.Hash(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("table:   %s (version %s)\n", cfg.Meta.TableID, cfg.Meta.Version)
	fmt.Printf("scale:   %d-%d\n", cfg.Scale.Min, cfg.Scale.Max)
	fmt.Printf("weights: %d categories\n", len(cfg.Weights))
	fmt.Printf("ratios:  %d with bands\n", len(cfg.Ratios))
	fmt.Printf("hash:    %s\n", hash)
	return nil
}
