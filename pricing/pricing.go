// Package pricing turns item snapshots into display symbols and discounted prices.
package pricing

import (
	"math"
	"strings"

	"lotcheck/config"
	"lotcheck/types"
)

// ExtractID keeps the decimal digits of link, in order.
// The result may be empty.
func ExtractID(link string) string {
	var b strings.Builder
	for i := 0; i < len(link); i++ {
		if c := link[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Discount applies the fixed discount factor and rounds half to even.
func Discount(price float64) int64 {
	return int64(math.RoundToEven(price * config.DiscountFactor))
}

// Classify derives the display symbol and discounted price for one link.
// A nil snapshot means the item could not be fetched.
func Classify(link string, snap *types.ItemSnapshot) types.ClassifiedResult {
	res := types.ClassifiedResult{
		Link:   link,
		ItemID: ExtractID(link),
		Symbol: types.SymbolRemoved,
	}
	if snap == nil {
		return res
	}

	switch snap.State {
	case types.ItemStatePaid:
		res.Symbol = types.SymbolGreen
		if snap.GuaranteeActive {
			res.Symbol = types.SymbolYellow
		}
	case types.ItemStateActive:
		res.Symbol = types.SymbolRed
	default:
		return res
	}

	res.Price = Discount(snap.Price)
	return res
}

// CountsTowardTotal reports whether res adds to the running green total.
func CountsTowardTotal(res types.ClassifiedResult) bool {
	return res.Symbol == types.SymbolGreen
}
