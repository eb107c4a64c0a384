// Package validate holds the pure input checks applied at the HTTP boundary
// before anything reaches the database. Every function returns the normalized
// value plus an error; none of them touch storage.
package validate

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/manuelgonzga/wallet-api/internal/currency"
)

const (
	maxUserIDLen = 255
	maxTitleLen  = 255

	// MaxAmount is the largest magnitude a transaction or budget amount may
	// have, matching the DECIMAL(10,2) column.
	MaxAmount = 999999.99
)

var (
	ErrUserID   = errors.New("user id must be a non-empty string of at most 255 characters")
	ErrUsername = errors.New("username may only contain letters, numbers, dots, hyphens and underscores (max 100)")
	ErrCurrency = errors.New("invalid currency code")
	ErrAmount   = errors.New("amount must be a finite number up to 999999.99 with at most 2 decimals")
	ErrTitle    = errors.New("title must be a non-empty string of at most 255 characters")
	ErrCategory = errors.New("invalid category")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)

// Categories is the closed set a transaction may belong to.
var Categories = []string{
	"Food & Drinks",
	"Shopping",
	"Transportation",
	"Entertainment",
	"Bills & Utilities",
	"Health",
	"Travel",
	"Income",
	"Other",
}

func UserID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxUserIDLen {
		return "", ErrUserID
	}
	return id, nil
}

func Username(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !usernameRe.MatchString(name) {
		return "", ErrUsername
	}
	return name, nil
}

// CurrencyCode uppercases and resolves the code against the catalog.
func CurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currency.IsValid(code) {
		return "", ErrCurrency
	}
	return code, nil
}

// CurrencyCodeSyntax only checks the 3-letter shape, for fields where catalog
// membership is best-effort (period currency override).
func CurrencyCodeSyntax(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrCurrency
		}
	}
	return code, nil
}

// Amount checks that v is finite, within the column cap, and carries at most
// two decimal places. The tolerance must absorb the float64 representation
// error of v*100, which grows past 1e-9 once v exceeds ~131072; a third
// decimal digit puts the cents value at least 0.1 off, so 1e-4 separates the
// two cleanly across the whole DECIMAL(10,2) range.
func Amount(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrAmount
	}
	if math.Abs(v) > MaxAmount {
		return 0, ErrAmount
	}
	cents := v * 100
	if math.Abs(cents-math.Round(cents)) > 1e-4 {
		return 0, ErrAmount
	}
	return math.Round(cents) / 100, nil
}

// PositiveAmount is Amount restricted to values greater than zero. New
// transactions arrive unsigned; the sign is applied from the declared type.
func PositiveAmount(v float64) (float64, error) {
	v, err := Amount(v)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ErrAmount
	}
	return v, nil
}

func Title(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLen {
		return "", ErrTitle
	}
	return title, nil
}

func Category(cat string) (string, error) {
	cat = strings.TrimSpace(cat)
	for _, c := range Categories {
		if c == cat {
			return c, nil
		}
	}
	return "", ErrCategory
}
