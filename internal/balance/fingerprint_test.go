package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletScope/internal/model"
)

func sampleSnapshot() model.WalletSnapshot {
	return model.WalletSnapshot{
		NativeBalance: decimal.RequireFromString("1.5"),
		Tokens: []model.TokenBalance{
			{ContractAddress: "0xA", TokenName: "Token A", NetAmount: decimal.RequireFromString("2")},
			{ContractAddress: "0xB", TokenName: "Token B", NetAmount: decimal.RequireFromString("0.25")},
		},
	}
}

func TestEncodeCanonicalText(t *testing.T) {
	data, err := Hasher{}.Encode(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t,
		`{"native":"1.5","tokens":[{"name":"Token A","contractAddress":"0xA","sum":"2"},{"name":"Token B","contractAddress":"0xB","sum":"0.25"}]}`,
		string(data))
}

func TestEncodeEmptyTokens(t *testing.T) {
	empty, err := Hasher{}.Encode(model.WalletSnapshot{NativeBalance: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, `{"native":"0","tokens":[]}`, string(empty))

	withSlice, err := Hasher{}.Encode(model.WalletSnapshot{NativeBalance: decimal.Zero, Tokens: []model.TokenBalance{}})
	require.NoError(t, err)
	assert.Equal(t, empty, withSlice)
}

func TestEncodeIgnoresDecimalRepresentation(t *testing.T) {
	a := model.WalletSnapshot{NativeBalance: decimal.RequireFromString("1.50")}
	b := model.WalletSnapshot{NativeBalance: decimal.New(15, -1)}

	fa, err := Hasher{}.Fingerprint(a)
	require.NoError(t, err)
	fb, err := Hasher{}.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintStable(t *testing.T) {
	first, err := Hasher{}.Fingerprint(sampleSnapshot())
	require.NoError(t, err)
	assert.Len(t, first.String(), 16)

	for i := 0; i < 5; i++ {
		again, err := Hasher{}.Fingerprint(sampleSnapshot())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFingerprintChangesWithAmount(t *testing.T) {
	base, err := Hasher{}.Fingerprint(sampleSnapshot())
	require.NoError(t, err)

	changed := sampleSnapshot()
	changed.Tokens[1].NetAmount = decimal.RequireFromString("0.2500001")
	other, err := Hasher{}.Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, base, other)

	native := sampleSnapshot()
	native.NativeBalance = decimal.RequireFromString("1.500000000000000001")
	other, err = Hasher{}.Fingerprint(native)
	require.NoError(t, err)
	assert.NotEqual(t, base, other)
}

func TestFingerprintTokenOrder(t *testing.T) {
	reordered := sampleSnapshot()
	reordered.Tokens[0], reordered.Tokens[1] = reordered.Tokens[1], reordered.Tokens[0]

	t.Run("order sensitive by default", func(t *testing.T) {
		a, err := Hasher{}.Fingerprint(sampleSnapshot())
		require.NoError(t, err)
		b, err := Hasher{}.Fingerprint(reordered)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("sorted tokens", func(t *testing.T) {
		h := Hasher{SortTokens: true}
		a, err := h.Fingerprint(sampleSnapshot())
		require.NoError(t, err)
		b, err := h.Fingerprint(reordered)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}
