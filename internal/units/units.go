// Package units converts between base-denomination integers and the decimal
// notation operators type and read.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNegative  = errors.New("amount is negative")
	ErrPrecision = errors.New("amount has more decimal places than the denomination")
)

// ParseAmount reads a decimal string such as "0.001" and returns it in base
// units for the given number of decimals.
func ParseAmount(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return big.NewInt(0), nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", value, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("parse amount %q: %w", value, ErrNegative)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("parse amount %q: %w", value, ErrPrecision)
	}
	return shifted.BigInt(), nil
}

// MustParseAmount is ParseAmount for constants known to be valid.
func MustParseAmount(value string, decimals uint8) *big.Int {
	v, err := ParseAmount(value, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatAmount renders base units as a decimal string without trailing zeros.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// Ratio returns num/den rounded to places, or "" when den is zero.
func Ratio(num, den *big.Int, places int32) string {
	if num == nil || den == nil || den.Sign() == 0 {
		return ""
	}
	return decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(den, 0), places).String()
}
