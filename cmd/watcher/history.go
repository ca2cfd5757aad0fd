package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"walletScope/internal/config"
	"walletScope/internal/model"
)

// historyRow is one CSV line per token; a snapshot without tokens still gets
// one row carrying its native balance.
type historyRow struct {
	ID              string `csv:"id"`
	CreatedAt       string `csv:"created_at"`
	Address         string `csv:"address"`
	Fingerprint     string `csv:"fingerprint"`
	NativeBalance   string `csv:"native_balance"`
	ContractAddress string `csv:"contract_address"`
	TokenName       string `csv:"token_name"`
	NetAmount       string `csv:"net_amount"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadHistory(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Store.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListSnapshots(ctx, cfg.Since, cfg.Limit)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	logger.Info("history loaded", zap.Int("records", len(records)), zap.Time("since", cfg.Since))

	return writeHistory(cmd.OutOrStdout(), cfg.Format, records)
}

func writeHistory(w io.Writer, format string, records []model.SnapshotRecord) error {
	switch format {
	case config.FormatCSV:
		rows := historyRows(records)
		if len(rows) == 0 {
			return nil
		}
		if err := gocsv.Marshal(rows, w); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	case config.FormatJSONL:
		enc := json.NewEncoder(w)
		for _, record := range records {
			if err := enc.Encode(record); err != nil {
				return fmt.Errorf("write jsonl: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func historyRows(records []model.SnapshotRecord) []*historyRow {
	rows := make([]*historyRow, 0, len(records))
	for _, record := range records {
		base := historyRow{
			ID:            record.ID,
			CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
			Address:       record.Address,
			Fingerprint:   record.Fingerprint.String(),
			NativeBalance: record.Snapshot.NativeBalance.String(),
		}
		if len(record.Snapshot.Tokens) == 0 {
			row := base
			rows = append(rows, &row)
			continue
		}
		for _, token := range record.Snapshot.Tokens {
			row := base
			row.ContractAddress = token.ContractAddress
			row.TokenName = token.TokenName
			row.NetAmount = token.NetAmount.String()
			rows = append(rows, &row)
		}
	}
	return rows
}
