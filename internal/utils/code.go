package utils

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

// bookingCodeAlphabet is the character set for booking codes.  Upper
// case letters and digits keep codes easy to read back over the phone.
const bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// BookingCodeLength is the number of characters in a booking code.
// 36^9 candidate codes makes collisions effectively unheard of at a
// single restaurant's volume.
const BookingCodeLength = 9

// NewBookingCode returns a random booking code.  Callers are expected
// to rejection-sample: check the code against existing rows and call
// again on a collision, bounded by a retry budget.
func NewBookingCode() (string, error) {
	buf := make([]byte, BookingCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(BookingCodeLength)
	for _, c := range buf {
		b.WriteByte(bookingCodeAlphabet[int(c)%len(bookingCodeAlphabet)])
	}
	return b.String(), nil
}

// NewOrderCode returns an order code of the form "PDD-XXXXXXXX",
// where the suffix is the first eight hex characters of a random
// UUID, upper-cased.  As with booking codes, callers rejection-sample
// against existing rows.
func NewOrderCode() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "PDD-" + strings.ToUpper(short)
}
