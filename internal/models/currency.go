package models

// Currency is a 3-letter ISO 4217 code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	CNY Currency = "CNY"
	NZD Currency = "NZD"
)

var recognizedCurrencies = map[Currency]struct{}{
	USD: {}, EUR: {}, GBP: {}, JPY: {}, AUD: {}, CAD: {}, CNY: {}, NZD: {},
}

// IsValid reports whether c is one of the recognized codes.
func (c Currency) IsValid() bool {
	_, ok := recognizedCurrencies[c]
	return ok
}

func (c Currency) String() string { return string(c) }
