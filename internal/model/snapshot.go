package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance is the net holding of one token contract.
type TokenBalance struct {
	ContractAddress string          `json:"contract_address"`
	TokenName       string          `json:"token_name"`
	NetAmount       decimal.Decimal `json:"net_amount"`
}

// WalletSnapshot is the point-in-time state of the watched address.
type WalletSnapshot struct {
	NativeBalance decimal.Decimal `json:"native_balance"`
	Tokens        []TokenBalance  `json:"tokens"`
}

// Fingerprint is the hex digest of a canonically encoded WalletSnapshot.
type Fingerprint string

func (f Fingerprint) String() string {
	return string(f)
}

// SnapshotRecord is a persisted snapshot with its fingerprint and storage metadata.
type SnapshotRecord struct {
	ID          string         `json:"id"`
	Address     string         `json:"address"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	Snapshot    WalletSnapshot `json:"snapshot"`
	CreatedAt   time.Time      `json:"created_at"`
}
