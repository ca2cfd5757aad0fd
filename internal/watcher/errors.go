package watcher

import (
	"fmt"

	"walletScope/internal/model"
)

// Upstream sources reported by UpstreamFetchError.
const (
	SourceNativeBalance   = "native balance"
	SourceTransferHistory = "transfer history"
)

// UpstreamFetchError aborts a run before any aggregation.
type UpstreamFetchError struct {
	Source string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// StoreQueryError is returned when the fingerprint existence check fails.
type StoreQueryError struct {
	Fingerprint model.Fingerprint
	Err         error
}

func (e *StoreQueryError) Error() string {
	return fmt.Sprintf("query snapshot %s: %v", e.Fingerprint, e.Err)
}

func (e *StoreQueryError) Unwrap() error {
	return e.Err
}

// StoreWriteError is returned when a changed snapshot could not be appended.
type StoreWriteError struct {
	Fingerprint model.Fingerprint
	Err         error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("append snapshot %s: %v", e.Fingerprint, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// NotificationError is logged only; it never fails a run.
type NotificationError struct {
	Fingerprint model.Fingerprint
	Err         error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify snapshot %s: %v", e.Fingerprint, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
