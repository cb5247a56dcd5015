// Package money handles expense amounts as integer cents so that totals and
// averages stay exact. Parsing accepts both dot and comma decimal separators
// and rounds half-up on the third decimal.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned for input that does not parse as a decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a currency value in cents.
type Amount int64

// FromCents builds an Amount from a raw cents value.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// Cents returns the raw cents value.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Parse converts a decimal string to an Amount.
//
// "12.34" and "12,34" both yield 1234 cents. Input with more than two
// fractional digits is rounded half-up on the third digit: "12.345" -> 1235.
// A leading minus sign is accepted; anything else non-numeric fails with
// ErrInvalidAmount.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxUnits = (1<<63 - 1) / 100
	if units > maxUnits {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := units*100 + fracCents
	if negative {
		cents = -cents
	}
	return Amount(cents), nil
}

// String renders the amount with exactly two decimals, e.g. "-12.34".
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Sum totals a list of amounts.
func Sum(amounts []Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// DivRound divides the amount by n with half-up rounding in cents.
// Used for per-group averages; n must be positive.
func (a Amount) DivRound(n int) Amount {
	cents := int64(a)
	d := int64(n)
	if cents < 0 {
		return -Amount((-cents*2 + d) / (2 * d))
	}
	return Amount((cents*2 + d) / (2 * d))
}
