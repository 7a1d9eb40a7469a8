package common

import "github.com/shopspring/decimal"

// Price is a wire-scale fixed-point price: an int64 scaled by
// FixedPriceScale, or the UndefPrice sentinel meaning "no price".
//
// Price levels are keyed on the raw int64 rather than a rescaled float so
// that btree comparisons never suffer floating point ambiguity.
// BestBidOffer.Price and Message.Price also hold this fixed-point form;
// no query returns a decimal.Decimal. Decimal() does the rescale, and the
// book rendering is its only caller inside the engine.
type Price struct {
	Raw int64
}

// UndefPriceValue is the zero-value-safe constructor for "no price".
func UndefPriceValue() Price { return Price{Raw: UndefPrice} }

// IsUndefined reports whether this price is the UNDEF_PRICE sentinel.
func (p Price) IsUndefined() bool { return p.Raw == UndefPrice }

// Decimal rescales the raw fixed-point value into a real-valued decimal
// price. Callers must not call this on an undefined price.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(p.Raw, 0).Div(decimal.New(FixedPriceScale, 0))
}

// PriceFromRaw normalizes a raw wire price: the sentinel passes through
// unchanged, anything else is kept in fixed-point form (rescale is
// deferred to Decimal()).
func PriceFromRaw(raw int64) Price {
	return Price{Raw: raw}
}
