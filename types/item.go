package types

// ItemState is the listing state reported by the marketplace.
type ItemState string

const (
	ItemStatePaid   ItemState = "paid"
	ItemStateActive ItemState = "active"
)

// ItemSnapshot is the normalized result of one upstream item lookup.
type ItemSnapshot struct {
	Price float64   `json:"price"`
	State ItemState `json:"state"`
	// GuaranteeActive is only meaningful when State is ItemStatePaid.
	GuaranteeActive bool `json:"guarantee_active"`
}

// Symbol is the display state of a checked link.
type Symbol string

const (
	SymbolGreen   Symbol = "green"   // paid, guarantee inactive
	SymbolYellow  Symbol = "yellow"  // paid, guarantee active
	SymbolRed     Symbol = "red"     // still listed
	SymbolRemoved Symbol = "removed" // lookup failed
)

// Emoji renders the symbol for text output.
func (s Symbol) Emoji() string {
	switch s {
	case SymbolGreen:
		return "🟢"
	case SymbolYellow:
		return "🟡"
	case SymbolRed:
		return "🔴"
	default:
		return "❌"
	}
}

// ClassifiedResult is the outcome for a single link.
type ClassifiedResult struct {
	Link   string `json:"link"`
	ItemID string `json:"item_id"`
	Symbol Symbol `json:"symbol"`
	// Price is the discounted price; 0 for removed items.
	Price int64 `json:"price"`
}
