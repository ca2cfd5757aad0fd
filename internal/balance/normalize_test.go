package balance

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletScope/internal/model"
)

func rawTransfer(contract, name, from, to, value, decimals, index string) model.RawTransfer {
	return model.RawTransfer{
		model.FieldContractAddress:  contract,
		model.FieldTokenName:        name,
		model.FieldFrom:             from,
		model.FieldTo:               to,
		model.FieldValue:            value,
		model.FieldTokenDecimal:     decimals,
		model.FieldTransactionIndex: index,
	}
}

func TestNormalizeScalesValues(t *testing.T) {
	records := []model.RawTransfer{
		rawTransfer("0xA", "Token A", "0x1", "0x2", "5000000000000000000", "18", "1"),
		rawTransfer("0xB", "Token B", "0x2", "0x1", "1", "7", "4"),
		rawTransfer("0xC", "Token C", "0x2", "0x1", "42", "0", "9"),
	}

	got, err := Normalize(records)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "5", got[0].ScaledValue.String())
	assert.Equal(t, "0.0000001", got[1].ScaledValue.String())
	assert.Equal(t, "42", got[2].ScaledValue.String())

	assert.Equal(t, "0xA", got[0].ContractAddress)
	assert.Equal(t, "Token A", got[0].TokenName)
	assert.Equal(t, "0x1", got[0].From)
	assert.Equal(t, "0x2", got[0].To)
	assert.Equal(t, int64(1), got[0].TransactionIndex)
	assert.Equal(t, int64(9), got[2].TransactionIndex)
}

func TestNormalizeAcceptsJSONNumbers(t *testing.T) {
	var record model.RawTransfer
	payload := `{"contractAddress":"0xA","tokenName":"A","from":"0x1","to":"0x2","value":2500000,"tokenDecimal":6,"transactionIndex":3}`
	require.NoError(t, json.Unmarshal([]byte(payload), &record))

	got, err := Normalize([]model.RawTransfer{record})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.5", got[0].ScaledValue.String())
	assert.Equal(t, int64(3), got[0].TransactionIndex)
}

func TestNormalizeEmptyInput(t *testing.T) {
	got, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		record model.RawTransfer
		field  string
	}{
		{
			name:   "value not numeric",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "abc", "18", "1"),
			field:  model.FieldValue,
		},
		{
			name:   "value negative",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "-5000000000000000000", "18", "1"),
			field:  model.FieldValue,
		},
		{
			name:   "value fractional",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "1.5", "18", "1"),
			field:  model.FieldValue,
		},
		{
			name:   "value exponent",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "5e18", "18", "1"),
			field:  model.FieldValue,
		},
		{
			name:   "value missing",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "", "18", "1"),
			field:  model.FieldValue,
		},
		{
			name:   "decimals negative",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "1", "-1", "1"),
			field:  model.FieldTokenDecimal,
		},
		{
			name:   "decimals not numeric",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "1", "x", "1"),
			field:  model.FieldTokenDecimal,
		},
		{
			name:   "transaction index malformed",
			record: rawTransfer("0xA", "A", "0x1", "0x2", "1", "18", "1.5"),
			field:  model.FieldTransactionIndex,
		},
		{
			name:   "contract missing",
			record: rawTransfer("", "A", "0x1", "0x2", "1", "18", "1"),
			field:  model.FieldContractAddress,
		},
		{
			name: "value unsupported type",
			record: model.RawTransfer{
				model.FieldContractAddress:  "0xA",
				model.FieldValue:            []string{"1"},
				model.FieldTokenDecimal:     "18",
				model.FieldTransactionIndex: "1",
			},
			field: model.FieldValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []model.RawTransfer{
				rawTransfer("0xOK", "OK", "0x1", "0x2", "1", "0", "0"),
				tt.record,
			}
			got, err := Normalize(records)
			require.Error(t, err)
			assert.Nil(t, got)

			var malformedErr *MalformedTransferError
			require.True(t, errors.As(err, &malformedErr))
			assert.Equal(t, 1, malformedErr.Position)
			assert.Equal(t, tt.field, malformedErr.Field)
		})
	}
}

func TestNormalizeMissingFieldSentinel(t *testing.T) {
	_, err := Normalize([]model.RawTransfer{{model.FieldContractAddress: "0xA"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestNormalizeRejectsNegativeOutgoingValue(t *testing.T) {
	me := "0x00000000000000000000000000000000000000Aa"
	_, err := Normalize([]model.RawTransfer{
		rawTransfer("0xA", "A", me, "0x2", "-5000000000000000000", "18", "1"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeValue)
}
