package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	VND CurrencyCode = "VND"
)

// SupportedCurrencies is the set accepted by the conversion endpoint.
var SupportedCurrencies = []CurrencyCode{USD, VND}

var (
	ErrInvalidAmount       = errors.New("Amount must be a positive number")
	ErrUnsupportedCurrency = errors.New("Invalid currency")
)

func NormalizeCurrency(code string) CurrencyCode {
	return CurrencyCode(strings.ToUpper(code))
}

func (c CurrencyCode) IsSupported() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// ParseCurrency normalizes code and checks it against SupportedCurrencies.
func ParseCurrency(code string) (CurrencyCode, error) {
	c := NormalizeCurrency(code)
	if !c.IsSupported() {
		return "", fmt.Errorf("%w: %s. Supported: %s", ErrUnsupportedCurrency, code, supportedList())
	}
	return c, nil
}

func supportedList() string {
	codes := make([]string, len(SupportedCurrencies))
	for i, c := range SupportedCurrencies {
		codes[i] = string(c)
	}
	return strings.Join(codes, ", ")
}

func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CurrencyPair is an ordered (from, to) pair; both codes are uppercase.
type CurrencyPair struct {
	From CurrencyCode
	To   CurrencyCode
}

func NewCurrencyPair(from, to CurrencyCode) CurrencyPair {
	return CurrencyPair{
		From: NormalizeCurrency(string(from)),
		To:   NormalizeCurrency(string(to)),
	}
}

func (p CurrencyPair) IsIdentity() bool {
	return p.From == p.To
}

func (p CurrencyPair) String() string {
	return string(p.From) + "_" + string(p.To)
}

// RoundAmount returns amount*rate rounded half-up to two decimal places.
func RoundAmount(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
}

type Conversion struct {
	OriginalAmount  float64      `json:"originalAmount"`
	FromCurrency    CurrencyCode `json:"fromCurrency"`
	ToCurrency      CurrencyCode `json:"toCurrency"`
	ConvertedAmount float64      `json:"convertedAmount"`
	Rate            float64      `json:"rate"`
	Timestamp       time.Time    `json:"timestamp"`
}

// ExchangeRate is a stored snapshot of a provider rate.
type ExchangeRate struct {
	From      CurrencyCode `db:"from_currency" json:"from"`
	To        CurrencyCode `db:"to_currency" json:"to"`
	Rate      float64      `db:"rate" json:"rate"`
	FetchedAt time.Time    `db:"fetched_at" json:"fetched_at"`
}
