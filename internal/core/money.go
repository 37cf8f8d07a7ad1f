// Package core provides the team budget domain model.
//
// This file contains the lenient number handling used for every currency
// field: user input may be blank, a numeric string, or garbage while a form
// is being edited, and all of those must decode without failing.
package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Amount is a currency value. It decodes from JSON numbers, numeric strings,
// blanks and null; anything that does not start with a number decodes as 0.
type Amount float64

// Float returns the amount as float64.
func (a Amount) Float() float64 {
	return float64(a)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(ParseAmount(s))
	case 't', 'f', '[', '{':
		*a = 0
	default:
		*a = Amount(ParseAmount(string(data)))
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(a), 'f', -1, 64)), nil
}

// ParseAmount reads the longest numeric prefix of s, ignoring leading
// whitespace. Returns 0 when s has no numeric prefix or the value is not finite.
//
// Examples:
//
//	ParseAmount("12.5")   -> 12.5
//	ParseAmount(" 40abc") -> 40
//	ParseAmount("")       -> 0
//	ParseAmount("abc")    -> 0
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || v != v || v > maxAmount || v < -maxAmount {
		return 0
	}
	return v
}

const maxAmount = 1e15

// numericPrefix returns the length of the leading decimal literal in s
// (sign, digits, optional fraction, optional exponent).
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// NonNegative clamps v at zero.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
