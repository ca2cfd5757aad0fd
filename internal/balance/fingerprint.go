package balance

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"walletScope/internal/model"
)

// Hasher produces deterministic fingerprints of wallet snapshots.
//
// Token order is part of the encoding, so two snapshots holding the same
// balances discovered in a different contract order fingerprint differently.
// SortTokens orders tokens by contract address before encoding instead.
type Hasher struct {
	SortTokens bool
}

type canonicalToken struct {
	Name            string `json:"name"`
	ContractAddress string `json:"contractAddress"`
	Sum             string `json:"sum"`
}

type canonicalSnapshot struct {
	Native string           `json:"native"`
	Tokens []canonicalToken `json:"tokens"`
}

// Encode returns the canonical text of a snapshot.
func (h Hasher) Encode(snapshot model.WalletSnapshot) ([]byte, error) {
	tokens := make([]canonicalToken, 0, len(snapshot.Tokens))
	for _, token := range snapshot.Tokens {
		tokens = append(tokens, canonicalToken{
			Name:            token.TokenName,
			ContractAddress: token.ContractAddress,
			Sum:             token.NetAmount.String(),
		})
	}
	if h.SortTokens {
		slices.SortStableFunc(tokens, func(a, b canonicalToken) int {
			return strings.Compare(contractKey(a.ContractAddress), contractKey(b.ContractAddress))
		})
	}

	data, err := json.Marshal(canonicalSnapshot{
		Native: snapshot.NativeBalance.String(),
		Tokens: tokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Fingerprint hashes the canonical encoding into a 16 character hex digest.
func (h Hasher) Fingerprint(snapshot model.WalletSnapshot) (model.Fingerprint, error) {
	data, err := h.Encode(snapshot)
	if err != nil {
		return "", err
	}
	return model.Fingerprint(fmt.Sprintf("%016x", xxhash.Sum64(data))), nil
}
