package balance

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"walletScope/internal/model"
)

// NoiseFloor is the smallest net amount considered a real holding. Totals at
// or below it are dropped from the snapshot.
var NoiseFloor = decimal.New(1, -7)

// TransferGroup holds every transfer of one token contract, ordered by
// transaction index.
type TransferGroup struct {
	ContractAddress string
	TokenName       string
	Transfers       []model.NormalizedTransfer
}

// GroupTransfers groups transfers by contract address in first-seen order.
// Within a group transfers are stably sorted by transaction index.
func GroupTransfers(transfers []model.NormalizedTransfer) []TransferGroup {
	groups := make([]TransferGroup, 0)
	positions := make(map[string]int)

	for _, transfer := range transfers {
		key := contractKey(transfer.ContractAddress)
		idx, ok := positions[key]
		if !ok {
			idx = len(groups)
			positions[key] = idx
			groups = append(groups, TransferGroup{
				ContractAddress: transfer.ContractAddress,
				TokenName:       transfer.TokenName,
			})
		}
		groups[idx].Transfers = append(groups[idx].Transfers, transfer)
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Transfers, func(a, b model.NormalizedTransfer) int {
			switch {
			case a.TransactionIndex < b.TransactionIndex:
				return -1
			case a.TransactionIndex > b.TransactionIndex:
				return 1
			default:
				return 0
			}
		})
	}

	return groups
}

// NetAmount reduces a group to its signed total for the watched address:
// transfers sent from the address subtract, all others add.
func NetAmount(group TransferGroup, watched string) decimal.Decimal {
	watched = strings.ToLower(watched)
	total := decimal.Zero
	for _, transfer := range group.Transfers {
		if strings.ToLower(transfer.From) == watched {
			total = total.Sub(transfer.ScaledValue)
		} else {
			total = total.Add(transfer.ScaledValue)
		}
	}
	return total
}

// Aggregate reduces normalized transfers into net token balances, keeping
// only contracts whose total is strictly above NoiseFloor.
func Aggregate(transfers []model.NormalizedTransfer, watched string) []model.TokenBalance {
	groups := GroupTransfers(transfers)
	tokens := make([]model.TokenBalance, 0, len(groups))
	for _, group := range groups {
		total := NetAmount(group, watched)
		if !total.GreaterThan(NoiseFloor) {
			continue
		}
		tokens = append(tokens, model.TokenBalance{
			ContractAddress: group.ContractAddress,
			TokenName:       group.TokenName,
			NetAmount:       total,
		})
	}
	return tokens
}

func contractKey(address string) string {
	return strings.ToLower(address)
}
