package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"walletScope/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wallet_snapshots (
	id             TEXT PRIMARY KEY,
	address        TEXT NOT NULL,
	fingerprint    TEXT NOT NULL,
	native_balance NUMERIC NOT NULL,
	tokens         JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS wallet_snapshots_fingerprint_idx ON wallet_snapshots (fingerprint);
CREATE INDEX IF NOT EXISTS wallet_snapshots_created_at_idx ON wallet_snapshots (created_at);
`

// Store provides Postgres persistence for wallet snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates the snapshot table and its indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SnapshotExists reports whether any record carries the fingerprint.
func (s *Store) SnapshotExists(ctx context.Context, fingerprint model.Fingerprint) (bool, error) {
	var exists bool
	row := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallet_snapshots WHERE fingerprint=$1)`, string(fingerprint))
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// AppendSnapshot inserts a new record. Existing rows are never updated.
func (s *Store) AppendSnapshot(ctx context.Context, record model.SnapshotRecord) (string, error) {
	args, err := insertArgs(record)
	if err != nil {
		return "", err
	}

	var id string
	row := s.pool.QueryRow(ctx, `
		INSERT INTO wallet_snapshots (id, address, fingerprint, native_balance, tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, args...)
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// ListSnapshots returns records created at or after since, oldest first.
func (s *Store) ListSnapshots(ctx context.Context, since time.Time, limit int) ([]model.SnapshotRecord, error) {
	query := `
		SELECT id, address, fingerprint, native_balance::text, tokens, created_at
		FROM wallet_snapshots
		WHERE created_at >= $1
		ORDER BY created_at, id
	`
	args := []interface{}{since}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var (
		id, address, fingerprint, native string
		tokens                           []byte
		createdAt                        time.Time
	)
	records := make([]model.SnapshotRecord, 0)
	_, err = pgx.ForEachRow(rows, []any{&id, &address, &fingerprint, &native, &tokens, &createdAt}, func() error {
		record, err := decodeRecord(id, address, fingerprint, native, tokens, createdAt)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func insertArgs(record model.SnapshotRecord) ([]interface{}, error) {
	if record.ID == "" {
		return nil, fmt.Errorf("record id is required")
	}
	tokens := record.Snapshot.Tokens
	if tokens == nil {
		tokens = []model.TokenBalance{}
	}
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("marshal tokens: %w", err)
	}
	return []interface{}{
		record.ID,
		record.Address,
		string(record.Fingerprint),
		record.Snapshot.NativeBalance.String(),
		tokensJSON,
		record.CreatedAt.UTC(),
	}, nil
}

func decodeRecord(id, address, fingerprint, native string, tokens []byte, createdAt time.Time) (model.SnapshotRecord, error) {
	nativeBalance, err := decimal.NewFromString(native)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("parse native balance %q: %w", native, err)
	}
	var balances []model.TokenBalance
	if err := json.Unmarshal(tokens, &balances); err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("decode tokens: %w", err)
	}
	return model.SnapshotRecord{
		ID:          id,
		Address:     address,
		Fingerprint: model.Fingerprint(fingerprint),
		Snapshot: model.WalletSnapshot{
			NativeBalance: nativeBalance,
			Tokens:        balances,
		},
		CreatedAt: createdAt.UTC(),
	}, nil
}
