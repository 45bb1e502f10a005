package book

import (
	"fmt"
	"strconv"
)

// DefaultPrecision is the number of fractional decimal digits a price
// carries in its fixed-point form.
const DefaultPrecision = 4

var pow10 = [...]int64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// MaxPrecision bounds the configurable fractional precision.
const MaxPrecision = len(pow10) - 1

// ParsePrice parses a decimal string like "44.25" into its fixed-point form
// at precision d, digit by digit. The fractional part may carry at most d
// digits and is right-padded with zeros. No floating point is involved.
func ParsePrice(s []byte, d int) (Price, error) {
	if d < 0 || d > MaxPrecision {
		return 0, fmt.Errorf("precision %d out of range [0,%d]", d, MaxPrecision)
	}
	if len(s) == 0 {
		return 0, fmt.Errorf("empty price")
	}

	var n int64
	i := 0
	sawDigit := false
	for ; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			break
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("bad price %q: unexpected character %q", s, c)
		}
		n = n*10 + int64(c-'0')
		sawDigit = true
	}

	frac := 0
	if i < len(s) {
		// skip the separator
		for i++; i < len(s); i++ {
			c := s[i]
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("bad price %q: unexpected character %q", s, c)
			}
			if frac == d {
				return 0, fmt.Errorf("bad price %q: more than %d fractional digits", s, d)
			}
			n = n*10 + int64(c-'0')
			frac++
			sawDigit = true
		}
	}
	if !sawDigit {
		return 0, fmt.Errorf("bad price %q: no digits", s)
	}

	for ; frac < d; frac++ {
		n *= 10
	}
	return Price(n), nil
}

// AppendFixed formats a fixed-point value with exactly d fractional digits,
// appending to dst. Used for both prices and priced totals, which share the
// same scale.
func AppendFixed(dst []byte, v int64, d int) []byte {
	if d == 0 {
		return strconv.AppendInt(dst, v, 10)
	}
	scale := pow10[d]
	dst = strconv.AppendInt(dst, v/scale, 10)
	dst = append(dst, '.')
	frac := v % scale
	for p := scale / 10; p > 1; p /= 10 {
		if frac >= p {
			break
		}
		dst = append(dst, '0')
	}
	return strconv.AppendInt(dst, frac, 10)
}

// FormatFixed is AppendFixed into a fresh string.
func FormatFixed(v int64, d int) string {
	return string(AppendFixed(nil, v, d))
}
