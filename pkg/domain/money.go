package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cents is a money amount in integer US cents. Fee arithmetic stays exact:
// adding a $6.00 notary fee and a $50.00 travel fee is 600 + 5000, never a
// float round-trip.
type Cents int64

// ParseCents reads a dollar amount like "6", "6.5" or "6.00".
// More than two fractional digits is rejected.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = d
	default:
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	total := dollars*100 + cents
	if neg {
		total = -total
	}
	return Cents(total), nil
}

// String formats the amount as a dollar string with two decimal places.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits the exact dollar string, e.g. "56.00".
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON accepts either a quoted dollar string or a bare JSON number.
// Both are parsed as decimal text so no float precision is lost.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
