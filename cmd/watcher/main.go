package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"walletScope/internal/config"
	"walletScope/internal/watcher"
)

func main() {
	root := &cobra.Command{
		Use:          "watcher",
		Short:        "Wallet balance change watcher",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Sample the wallet once and report a change",
		RunE:  runOnce,
	}
	addRunFlags(runCmd.Flags())
	root.AddCommand(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Sample the wallet on a fixed interval",
		RunE:  runWatch,
	}
	addRunFlags(watchCmd.Flags())
	watchCmd.Flags().Duration("interval", watcher.DefaultInterval, "pause between runs")
	root.AddCommand(watchCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted snapshots",
		RunE:  runHistory,
	}
	addStoreFlags(historyCmd.Flags())
	historyCmd.Flags().String("since", "", "only records created at or after (unix seconds or RFC3339)")
	historyCmd.Flags().Int("limit", 0, "maximum records, 0 means all")
	historyCmd.Flags().String("format", config.FormatJSONL, "output format (jsonl, csv)")
	historyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(historyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.String("address", "", "watched wallet address")
	flags.String("explorer-url", "https://api.etherscan.io/api", "Etherscan-compatible API endpoint")
	flags.String("explorer-api-key", "", "explorer API key")
	flags.Uint64("explorer-chain-id", 0, "explorer chainid parameter, 0 to omit")
	flags.Int("explorer-page-size", 10000, "transfers per explorer query (max 10000)")
	flags.String("rpc", "", "JSON-RPC URL; when set the native balance is read from the node")
	flags.Duration("http-timeout", 15*time.Second, "HTTP timeout for explorer and webhook calls")
	flags.Int("max-retries", 3, "maximum explorer retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	addStoreFlags(flags)
	flags.StringSlice("discord-webhook", nil, "Discord webhook URLs (comma-separated)")
	flags.String("nats-url", "", "NATS server URL")
	flags.String("nats-subject", "wallet.snapshots", "NATS subject for change messages")
	flags.String("native-symbol", "ETH", "label of the native balance field")
	flags.Bool("fingerprint-sort-tokens", false, "sort tokens by contract before fingerprinting")
	flags.Bool("notify-requires-persist", false, "skip notifications when the snapshot could not be stored")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func addStoreFlags(flags *pflag.FlagSet) {
	flags.String("store", config.StoreJSONL, "snapshot store (jsonl, postgres, wal)")
	flags.String("out", "./data/snapshots.jsonl", "JSONL snapshot path")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("wal-dir", "./data/wal", "WAL snapshot directory")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		result, err := a.runner.RunOnce(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("run complete",
			zap.Bool("changed", result.Changed),
			zap.String("fingerprint", result.Fingerprint.String()),
			zap.String("record_id", result.RecordID),
		)
		return nil
	})
}

func runWatch(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return a.runner.Watch(ctx)
	})
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
