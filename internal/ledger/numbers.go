package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const accountNumberDigits = 10 // 9 random + Luhn check digit

// NewAccountNumber returns a fresh 10-digit account number whose last
// digit is a Luhn check digit. Uniqueness is enforced by the number
// registry, not here.
func NewAccountNumber() string {
	var b strings.Builder
	for i := 0; i < accountNumberDigits-1; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			panic(err) // crypto/rand failure is not recoverable
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	digits := b.String()
	return digits + string(rune('0'+luhnCheckDigit(digits)))
}

// ValidAccountNumber reports whether s is 10 digits with a correct
// Luhn check digit.
func ValidAccountNumber(s string) bool {
	if len(s) != accountNumberDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return luhnCheckDigit(s[:accountNumberDigits-1]) == int(s[accountNumberDigits-1]-'0')
}

func luhnCheckDigit(digits string) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		double = !double
		sum += d
	}
	return (10 - sum%10) % 10
}

// NewReference returns a system-assigned transaction reference for
// callers that do not bring their own idempotency key.
func NewReference() string {
	return fmt.Sprintf("TXN-%s", strings.ToUpper(uuid.NewString()[:18]))
}
