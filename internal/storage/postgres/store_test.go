package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletScope/internal/model"
)

func TestInsertArgsRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	record := model.SnapshotRecord{
		ID:          "id-1",
		Address:     "0x1111111111111111111111111111111111111111",
		Fingerprint: "0123456789abcdef",
		Snapshot: model.WalletSnapshot{
			NativeBalance: decimal.RequireFromString("1.5"),
			Tokens: []model.TokenBalance{
				{ContractAddress: "0xA", TokenName: "A", NetAmount: decimal.RequireFromString("0.0000002")},
			},
		},
		CreatedAt: createdAt,
	}

	args, err := insertArgs(record)
	require.NoError(t, err)
	require.Len(t, args, 6)
	assert.Equal(t, "1.5", args[3])

	tokens, ok := args[4].([]byte)
	require.True(t, ok)

	decoded, err := decodeRecord(args[0].(string), args[1].(string), args[2].(string), args[3].(string), tokens, args[5].(time.Time))
	require.NoError(t, err)
	assert.Equal(t, record.ID, decoded.ID)
	assert.Equal(t, record.Fingerprint, decoded.Fingerprint)
	assert.True(t, decoded.CreatedAt.Equal(createdAt))
	require.Len(t, decoded.Snapshot.Tokens, 1)
	assert.Equal(t, "0.0000002", decoded.Snapshot.Tokens[0].NetAmount.String())
}

func TestInsertArgsEmptyTokens(t *testing.T) {
	args, err := insertArgs(model.SnapshotRecord{ID: "id-1", Snapshot: model.WalletSnapshot{NativeBalance: decimal.Zero}})
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), args[4])
}

func TestInsertArgsRequiresID(t *testing.T) {
	_, err := insertArgs(model.SnapshotRecord{})
	assert.Error(t, err)
}

func TestDecodeRecordInvalidNative(t *testing.T) {
	_, err := decodeRecord("id", "addr", "fp", "not-a-number", []byte("[]"), time.Now())
	assert.Error(t, err)
}
