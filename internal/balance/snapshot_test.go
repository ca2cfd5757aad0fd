package balance

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"walletScope/internal/model"
)

func TestNativeFromWei(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", NativeFromWei(wei).String())
	assert.Equal(t, "0", NativeFromWei(big.NewInt(0)).String())
	assert.Equal(t, "0", NativeFromWei(nil).String())
	assert.Equal(t, "0.000000000000000001", NativeFromWei(big.NewInt(1)).String())
}

func TestBuildSnapshotKeepsTokensVerbatim(t *testing.T) {
	tokens := []model.TokenBalance{
		{ContractAddress: "0xB", TokenName: "B", NetAmount: decimal.NewFromInt(2)},
		{ContractAddress: "0xA", TokenName: "A", NetAmount: decimal.NewFromInt(1)},
	}
	snapshot := BuildSnapshot(decimal.RequireFromString("1.5"), tokens)

	assert.Equal(t, "1.5", snapshot.NativeBalance.String())
	assert.Equal(t, tokens, snapshot.Tokens)
}
