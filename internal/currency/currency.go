package currency

import "strings"

// Currency describes one supported currency.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

const DefaultCode = "EUR"

var catalog = []Currency{
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "$"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
}

// All returns the full catalog in a stable order.
func All() []Currency {
	out := make([]Currency, len(catalog))
	copy(out, catalog)
	return out
}

func IsValid(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range catalog {
		if c.Code == code {
			return true
		}
	}
	return false
}

func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range catalog {
		if c.Code == code {
			return c.Symbol
		}
	}
	return "€"
}

func Name(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range catalog {
		if c.Code == code {
			return c.Name
		}
	}
	return "Euro"
}
