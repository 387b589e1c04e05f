// Package money parses Brazilian-locale currency amounts. Clients send
// values either as native JSON numbers or as strings with a comma decimal
// separator ("252,98").
package money

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid money amount")

// Amount is a decimal currency value that unmarshals from a number or a
// comma-decimal string. The zero value means "not provided", so create paths
// must check Set.
type Amount struct {
	Value float64
	Set   bool
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidAmount
		}
		v, err := Parse(raw)
		if err != nil {
			return err
		}
		a.Value = v
		a.Set = true
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return ErrInvalidAmount
	}
	a.Value = v
	a.Set = true
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value)
}

// Parse converts a comma-decimal string ("1234,56") to a float. Period
// decimals are accepted too since webforms send either.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Round2 rounds to two decimal places, used by statistics totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
