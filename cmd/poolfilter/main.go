// ====================================
// File: cmd/poolfilter/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pool-filter/internal/bot"
	"github.com/rovshanmuradov/solana-pool-filter/internal/config"
	"github.com/rovshanmuradov/solana-pool-filter/internal/sniping"
	"github.com/rovshanmuradov/solana-pool-filter/internal/utils/logger"
)

var (
	configPath string
	workers    int
	pretty     bool
)

var rootCmd = &cobra.Command{
	Use:   "poolfilter",
	Short: "Evaluate Raydium AMM v4 pools against acceptance filters",
	Long: `poolfilter fetches Raydium AMM v4 pools by id and runs the configured
acceptance filters against them: mint suffix, mutable metadata with socials,
and market cap bounds in SOL.`,
	SilenceUsage: true,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <pool-id>...",
	Short: "Run every active filter once per pool",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, false)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <pool-id>...",
	Short: "Re-run the filters on the configured schedule until enough consecutive passes",
	Long: `watch re-evaluates each pool every filter_check_interval for up to
filter_check_duration and accepts it after consecutive_filter_matches passes in a row.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, true)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.json", "Path to configuration file")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 4, "Pools evaluated in parallel")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Colored compact console output")

	rootCmd.AddCommand(evaluateCmd, watchCmd)
}

func run(ctx context.Context, args []string, watch bool) error {
	ids := make([]solana.PublicKey, 0, len(args))
	for _, arg := range args {
		id, err := solana.PublicKeyFromBase58(arg)
		if err != nil {
			return fmt.Errorf("invalid pool id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	logCfg.Pretty = pretty
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	opLog := log.WithOperation("evaluate")
	defer log.TrackPerformance("evaluate")()

	runner, err := bot.NewRunner(cfg, nil, opLog)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if err := runner.Shutdown(); err != nil {
			opLog.Error("Failed to flush rejection log", zap.Error(err))
		}
	}()

	outcomes, err := runner.Run(ctx, ids, watch, workers)
	if err != nil {
		return err
	}

	report(outcomes)
	if n := countRejected(outcomes); n > 0 {
		return fmt.Errorf("%d of %d pools rejected", n, len(outcomes))
	}
	return nil
}

func report(outcomes []sniping.Outcome) {
	for _, out := range outcomes {
		verdict := "PASS"
		if !out.Accepted {
			verdict = "REJECT"
		}
		fmt.Printf("%-6s %s\n", verdict, out.Pool)
	}
}

func countRejected(outcomes []sniping.Outcome) int {
	n := 0
	for _, out := range outcomes {
		if !out.Accepted {
			n++
		}
	}
	return n
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
