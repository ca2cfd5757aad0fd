package balance

import (
	"math/big"

	"github.com/shopspring/decimal"

	"walletScope/internal/model"
)

// NativeDecimals is the number of decimals of the native coin (wei -> ether).
const NativeDecimals = 18

// NativeFromWei converts a smallest-unit native balance into display units.
func NativeFromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -NativeDecimals)
}

// BuildSnapshot combines the native balance and token balances verbatim.
func BuildSnapshot(native decimal.Decimal, tokens []model.TokenBalance) model.WalletSnapshot {
	return model.WalletSnapshot{
		NativeBalance: native,
		Tokens:        tokens,
	}
}
