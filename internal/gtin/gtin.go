// Package gtin validates EAN-13 / GTIN-13 product codes.
package gtin

import (
	"fmt"
	"strings"
	"unicode"
)

// Length is the number of digits in an EAN-13 code.
const Length = 13

// Result is the outcome of validating a code.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Validate checks that code is a 13-digit EAN whose final digit matches the
// weighted checksum of the first twelve. Whitespace and hyphens are ignored.
// An empty code is reported as missing.
func Validate(code string) Result {
	if code == "" {
		return Result{Valid: false, Error: "EAN/GTIN is required but not provided"}
	}

	clean := Normalize(code)
	if len(clean) != Length || !allDigits(clean) {
		return Result{
			Valid: false,
			Error: fmt.Sprintf("EAN/GTIN must be 13 digits, got: %d characters", len([]rune(clean))),
		}
	}

	expected, _ := CheckDigit(clean[:Length-1])
	actual := int(clean[Length-1] - '0')
	if expected != actual {
		return Result{
			Valid: false,
			Error: fmt.Sprintf("Invalid EAN/GTIN checksum. Expected check digit: %d", expected),
		}
	}

	return Result{Valid: true}
}

// Normalize strips whitespace and hyphens from code.
func Normalize(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, code)
}

// CheckDigit computes the EAN-13 check digit for the first twelve digits.
// Even (0-based) positions weigh 1, odd positions weigh 3.
func CheckDigit(first12 string) (int, error) {
	if len(first12) != Length-1 || !allDigits(first12) {
		return 0, fmt.Errorf("check digit needs %d digits, got %q", Length-1, first12)
	}

	sum := 0
	for i := 0; i < Length-1; i++ {
		d := int(first12[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return (10 - sum%10) % 10, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
