package domain

import "fmt"

// TurfType identifies a bookable turf category.
type TurfType string

const (
	TurfFootballFull TurfType = "football-full"
	TurfFootballHalf TurfType = "football-half"
	TurfCricket      TurfType = "cricket"
)

// TurfTypes returns all supported turf types in display order.
func TurfTypes() []TurfType {
	return []TurfType{TurfFootballFull, TurfFootballHalf, TurfCricket}
}

// IsValid checks if the turf type is one of the supported categories.
func (t TurfType) IsValid() bool {
	switch t {
	case TurfFootballFull, TurfFootballHalf, TurfCricket:
		return true
	}
	return false
}

// String returns the string representation of TurfType.
func (t TurfType) String() string {
	return string(t)
}

// DisplayName returns the human-readable name of the turf type.
func (t TurfType) DisplayName() string {
	switch t {
	case TurfFootballFull:
		return "Football - Full Court"
	case TurfFootballHalf:
		return "Football - Half Court"
	case TurfCricket:
		return "Cricket Turf"
	}
	return string(t)
}

// Rate holds the per-slot pricing for a turf type. Amounts are in INR.
type Rate struct {
	Price   int64 `json:"price"`
	Advance int64 `json:"advance"`
}

// catalog is the fixed price table. Advance is the portion collected at
// booking time, the rest is due at the venue.
var catalog = map[TurfType]Rate{
	TurfFootballFull: {Price: 1000, Advance: 300},
	TurfFootballHalf: {Price: 600, Advance: 200},
	TurfCricket:      {Price: 1000, Advance: 300},
}

// LookupRate returns the pricing for a turf type.
func LookupRate(t TurfType) (Rate, error) {
	rate, ok := catalog[t]
	if !ok {
		return Rate{}, fmt.Errorf("%w: %s", ErrUnknownTurfType, t)
	}
	return rate, nil
}

// Quote holds the derived amounts for a slot selection.
type Quote struct {
	Total     int64 `json:"total"`
	Advance   int64 `json:"advance"`
	Remaining int64 `json:"remaining"`
}

// QuoteFor computes total, advance and remaining for a number of selected
// slots. A zero slot count yields a zero quote.
func QuoteFor(t TurfType, slotCount int) (Quote, error) {
	if slotCount < 0 {
		return Quote{}, ErrInvalidSlotCount
	}
	rate, err := LookupRate(t)
	if err != nil {
		return Quote{}, err
	}
	total := rate.Price * int64(slotCount)
	advance := rate.Advance * int64(slotCount)
	return Quote{
		Total:     total,
		Advance:   advance,
		Remaining: total - advance,
	}, nil
}
