package balance

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"walletScope/internal/model"
)

// Normalize converts raw explorer transfers into typed, decimal-scaled
// transfers, preserving input order.
func Normalize(records []model.RawTransfer) ([]model.NormalizedTransfer, error) {
	out := make([]model.NormalizedTransfer, 0, len(records))
	for i, record := range records {
		transfer, err := NormalizeTransfer(i, record)
		if err != nil {
			return nil, err
		}
		out = append(out, transfer)
	}
	return out, nil
}

// NormalizeTransfer converts a single raw transfer. position is only used for
// error reporting.
func NormalizeTransfer(position int, record model.RawTransfer) (model.NormalizedTransfer, error) {
	contract, err := requiredString(position, record, model.FieldContractAddress)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}

	rawDecimals, err := requiredString(position, record, model.FieldTokenDecimal)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}
	decimals, err := strconv.ParseUint(rawDecimals, 10, 8)
	if err != nil {
		return model.NormalizedTransfer{}, malformed(position, model.FieldTokenDecimal, rawDecimals, err)
	}

	// value is an unsigned integer in the token's smallest unit.
	rawValue, err := requiredString(position, record, model.FieldValue)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}
	value, ok := new(big.Int).SetString(rawValue, 10)
	if !ok {
		return model.NormalizedTransfer{}, malformed(position, model.FieldValue, rawValue, ErrNotInteger)
	}
	if value.Sign() < 0 {
		return model.NormalizedTransfer{}, malformed(position, model.FieldValue, rawValue, ErrNegativeValue)
	}

	rawIndex, err := requiredString(position, record, model.FieldTransactionIndex)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}
	txIndex, err := strconv.ParseInt(rawIndex, 10, 64)
	if err != nil {
		return model.NormalizedTransfer{}, malformed(position, model.FieldTransactionIndex, rawIndex, err)
	}

	tokenName, err := optionalString(position, record, model.FieldTokenName)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}
	from, err := optionalString(position, record, model.FieldFrom)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}
	to, err := optionalString(position, record, model.FieldTo)
	if err != nil {
		return model.NormalizedTransfer{}, err
	}

	return model.NormalizedTransfer{
		ContractAddress:  contract,
		TokenName:        tokenName,
		ScaledValue:      decimal.NewFromBigInt(value, -int32(decimals)),
		From:             from,
		To:               to,
		TransactionIndex: txIndex,
	}, nil
}

func requiredString(position int, record model.RawTransfer, field string) (string, error) {
	val, err := optionalString(position, record, field)
	if err != nil {
		return "", err
	}
	if val == "" {
		return "", malformed(position, field, nil, ErrMissingField)
	}
	return val, nil
}

func optionalString(position int, record model.RawTransfer, field string) (string, error) {
	raw, ok := record[field]
	if !ok || raw == nil {
		return "", nil
	}
	val, err := cast.ToStringE(raw)
	if err != nil {
		return "", malformed(position, field, raw, fmt.Errorf("unsupported type %T", raw))
	}
	return strings.TrimSpace(val), nil
}

func malformed(position int, field string, value interface{}, err error) *MalformedTransferError {
	return &MalformedTransferError{Position: position, Field: field, Value: value, Err: err}
}
