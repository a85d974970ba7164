package domain

// Currency represents a supported currency in the domain.
// The set of currencies is fixed at build time; accounts and transactions
// only ever reference codes from this registry.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary key (e.g., "CIV")
	Name         string `json:"name"`         // e.g., "Civilization Coin"
	Prefix       string `json:"prefix"`       // Display sign before the amount, may be empty
	Suffix       string `json:"suffix"`       // Display sign after the amount, may be empty
}

// currencies is the fixed registry, keyed by code.
// LRA deliberately has no sign definition and falls back to the plain format.
var currencies = map[string]Currency{
	"JPY": {CurrencyCode: "JPY", Name: "Japanese Yen", Suffix: "¥"},
	"CIV": {CurrencyCode: "CIV", Name: "Civilization Coin", Suffix: "C"},
	"LRA": {CurrencyCode: "LRA", Name: "Ottoman Lira"},
}

// CurrencyByCode looks up a currency in the registry.
func CurrencyByCode(code string) (Currency, bool) {
	c, ok := currencies[code]
	return c, ok
}

// Currencies returns all registered currencies.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	return out
}

// IsValidCurrency reports whether code is in the registry.
func IsValidCurrency(code string) bool {
	_, ok := currencies[code]
	return ok
}
