package watcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"walletScope/internal/balance"
	"walletScope/internal/model"
	"walletScope/internal/storage"
)

// DefaultInterval is the pause between scheduled runs.
const DefaultInterval = 3 * time.Minute

// RunConfig holds runtime settings for the watcher.
type RunConfig struct {
	Address        string
	NativeSymbol   string
	Hasher         balance.Hasher
	RequirePersist bool
	Interval       time.Duration
}

// Result describes the outcome of one run.
type Result struct {
	Changed     bool
	Fingerprint model.Fingerprint
	RecordID    string
	Snapshot    model.WalletSnapshot
}

// Runner samples the watched address and reports snapshot changes.
type Runner struct {
	cfg       RunConfig
	native    NativeBalanceSource
	transfers TransferSource
	detector  *Detector
	emitter   *Emitter
	logger    *zap.Logger
}

// NewRunner builds a Runner with its dependencies. notifier may be nil.
func NewRunner(
	cfg RunConfig,
	native NativeBalanceSource,
	transfers TransferSource,
	store storage.SnapshotStore,
	notifier Notifier,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	emitter := NewEmitter(EmitterConfig{
		Address:        cfg.Address,
		NativeSymbol:   cfg.NativeSymbol,
		RequirePersist: cfg.RequirePersist,
	}, store, notifier, logger)

	return &Runner{
		cfg:       cfg,
		native:    native,
		transfers: transfers,
		detector:  NewDetector(store),
		emitter:   emitter,
		logger:    logger,
	}
}

// RunOnce performs one sampling run.
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	if r.native == nil {
		return Result{}, fmt.Errorf("native balance source is nil")
	}
	if r.transfers == nil {
		return Result{}, fmt.Errorf("transfer source is nil")
	}
	if r.emitter.store == nil {
		return Result{}, fmt.Errorf("snapshot store is nil")
	}
	if r.cfg.Address == "" {
		return Result{}, fmt.Errorf("address is required")
	}

	wei, raw, err := r.fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	transfers, err := balance.Normalize(raw)
	if err != nil {
		return Result{}, err
	}
	tokens := balance.Aggregate(transfers, r.cfg.Address)
	snapshot := balance.BuildSnapshot(balance.NativeFromWei(wei), tokens)

	fingerprint, err := r.cfg.Hasher.Fingerprint(snapshot)
	if err != nil {
		return Result{}, err
	}

	result := Result{Fingerprint: fingerprint, Snapshot: snapshot}

	changed, err := r.detector.Changed(ctx, fingerprint)
	if err != nil {
		return result, err
	}
	if !changed {
		r.logger.Info("wallet content did not change", zap.String("fingerprint", fingerprint.String()))
		return result, nil
	}

	result.Changed = true
	r.logger.Info("wallet content changed",
		zap.String("fingerprint", fingerprint.String()),
		zap.String("native_balance", snapshot.NativeBalance.String()),
		zap.Int("tokens", len(snapshot.Tokens)),
		zap.Int("transfers", len(transfers)),
	)

	recordID, err := r.emitter.Emit(ctx, snapshot, fingerprint)
	result.RecordID = recordID
	return result, err
}

// fetch reads the native balance and the transfer history concurrently.
func (r *Runner) fetch(ctx context.Context) (*big.Int, []model.RawTransfer, error) {
	var (
		wei *big.Int
		raw []model.RawTransfer
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		value, err := r.native.FetchNativeBalance(gCtx, r.cfg.Address)
		if err != nil {
			return &UpstreamFetchError{Source: SourceNativeBalance, Err: err}
		}
		if value == nil {
			return &UpstreamFetchError{Source: SourceNativeBalance, Err: fmt.Errorf("empty balance")}
		}
		wei = value
		return nil
	})
	g.Go(func() error {
		records, err := r.transfers.FetchTransferHistory(gCtx, r.cfg.Address)
		if err != nil {
			return &UpstreamFetchError{Source: SourceTransferHistory, Err: err}
		}
		raw = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return wei, raw, nil
}

// Watch runs immediately and then once per interval until ctx is cancelled.
// Failed runs are logged; the next run starts from scratch.
func (r *Runner) Watch(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("watch start", zap.String("address", r.cfg.Address), zap.Duration("interval", r.cfg.Interval))

	for {
		r.runLogged(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) runLogged(ctx context.Context) {
	start := time.Now()
	result, err := r.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	r.logger.Info("run complete",
		zap.Bool("changed", result.Changed),
		zap.String("fingerprint", result.Fingerprint.String()),
		zap.String("record_id", result.RecordID),
		zap.Duration("elapsed", time.Since(start)),
	)
}
