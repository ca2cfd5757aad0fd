package model

import "github.com/shopspring/decimal"

// RawTransfer is one token transfer entry as returned by the explorer API.
// Values are kept untyped; the explorer encodes numbers as strings but
// other providers may emit JSON numbers.
type RawTransfer map[string]interface{}

// Field names used by the explorer token transfer payload.
const (
	FieldContractAddress  = "contractAddress"
	FieldTokenName        = "tokenName"
	FieldFrom             = "from"
	FieldTo               = "to"
	FieldValue            = "value"
	FieldTokenDecimal     = "tokenDecimal"
	FieldTransactionIndex = "transactionIndex"
)

// NormalizedTransfer is a typed, decimal-scaled token transfer.
type NormalizedTransfer struct {
	ContractAddress  string          `json:"contract_address"`
	TokenName        string          `json:"token_name"`
	ScaledValue      decimal.Decimal `json:"scaled_value"`
	From             string          `json:"from"`
	To               string          `json:"to"`
	TransactionIndex int64           `json:"transaction_index"`
}
