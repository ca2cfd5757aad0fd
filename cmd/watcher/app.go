package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"walletScope/internal/balance"
	"walletScope/internal/chain"
	"walletScope/internal/config"
	"walletScope/internal/explorer"
	"walletScope/internal/notify"
	"walletScope/internal/storage"
	"walletScope/internal/storage/postgres"
	"walletScope/internal/storage/wal"
	"walletScope/internal/watcher"
)

// app owns everything a run needs and releases it on Close.
type app struct {
	runner  *watcher.Runner
	logger  *zap.Logger
	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (a *app, err error) {
	address, err := watcher.ParseAddress(cfg.Address)
	if err != nil {
		return nil, err
	}

	a = &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	explorerClient := explorer.NewClient(explorer.Config{
		BaseURL:      cfg.ExplorerURL,
		APIKey:       cfg.ExplorerAPIKey,
		ChainID:      cfg.ExplorerChainID,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PageSize:     cfg.ExplorerPageSize,
	}, nil, logger)

	var native watcher.NativeBalanceSource = explorerClient
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		a.closers = append(a.closers, func() error {
			chainClient.Close()
			return nil
		})

		chainID, err := chainClient.GetChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("get chain id: %w", err)
		}
		if cfg.ExplorerChainID != 0 && chainID.Uint64() != cfg.ExplorerChainID {
			return nil, fmt.Errorf("rpc chain id %s does not match explorer chain id %d", chainID, cfg.ExplorerChainID)
		}
		logger.Info("native balance from rpc", zap.String("rpc", cfg.RPCURL), zap.String("chain_id", chainID.String()))
		native = chainClient
	}

	notifier, err := a.buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	a.runner = watcher.NewRunner(watcher.RunConfig{
		Address:        address.Hex(),
		NativeSymbol:   cfg.NativeSymbol,
		Hasher:         balance.Hasher{SortTokens: cfg.FingerprintSortTokens},
		RequirePersist: cfg.NotifyRequiresPersist,
		Interval:       cfg.Interval,
	}, native, explorerClient, store, notifier, logger)

	logger.Info("watcher configured",
		zap.String("address", address.Hex()),
		zap.String("explorer", cfg.ExplorerURL),
		zap.String("store", cfg.Store.Kind),
		zap.Int("discord_webhooks", len(cfg.DiscordWebhooks)),
		zap.Bool("nats", cfg.NATSURL != ""),
	)
	return a, nil
}

// buildNotifier returns nil when no target is configured.
func (a *app) buildNotifier(cfg config.Config, logger *zap.Logger) (watcher.Notifier, error) {
	var targets notify.Multi
	for _, webhook := range cfg.DiscordWebhooks {
		targets = append(targets, notify.NewDiscord(webhook, cfg.HTTPTimeout, nil, logger))
	}
	if cfg.NATSURL != "" {
		publisher, err := notify.NewNATS(notify.NATSConfig{
			URL:            cfg.NATSURL,
			Subject:        cfg.NATSSubject,
			ConnectTimeout: cfg.HTTPTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		targets = append(targets, publisher)
	}

	switch len(targets) {
	case 0:
		logger.Warn("no notification target configured")
		return nil, nil
	case 1:
		return targets[0], nil
	default:
		return targets, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Kind {
	case config.StoreJSONL:
		logger.Info("snapshot store", zap.String("kind", cfg.Kind), zap.String("out", cfg.Out))
		return storage.NewJsonlStorage(cfg.Out, logger), nil
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("snapshot store", zap.String("kind", cfg.Kind))
		return store, nil
	case config.StoreWAL:
		store, err := wal.NewStore(cfg.WALDir)
		if err != nil {
			return nil, fmt.Errorf("open wal: %w", err)
		}
		logger.Info("snapshot store", zap.String("kind", cfg.Kind), zap.String("dir", cfg.WALDir))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Kind)
	}
}
