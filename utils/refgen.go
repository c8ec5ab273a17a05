package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	refAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	refDigits       = "0123456789"
)

// Reference prefixes: bookings MK-YYMMDD-XXXX, transactions TXN-YYMMDD-XXXXX,
// expenses EXP-YYMMDD-XXX.
const (
	BookingRefPrefix     = "MK"
	TransactionRefPrefix = "TXN"
	ExpenseRefPrefix     = "EXP"
)

// GenerateRef builds a date-prefixed randomized reference code, e.g.
// MK-250901-7QX2. Uniqueness is enforced by the storage layer; callers retry
// with a fresh code on collision.
func GenerateRef(prefix string, suffixLen int) string {
	return generate(prefix, refAlphanumeric, suffixLen)
}

// GenerateDigitRef is GenerateRef with a digits-only suffix (expense refs).
func GenerateDigitRef(prefix string, suffixLen int) string {
	return generate(prefix, refDigits, suffixLen)
}

func generate(prefix, alphabet string, suffixLen int) string {
	datePart := time.Now().Format("060102")
	suffix := make([]byte, suffixLen)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, datePart, suffix)
}
