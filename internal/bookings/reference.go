package bookings

import (
	"crypto/rand"
	"fmt"
)

// Unambiguous alphabet: no 0/O, 1/I.
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referenceLength = 8

// NewBookingReference returns a customer-facing code like GP-7KQ2M9XD.
func NewBookingReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate booking reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return "GP-" + string(buf), nil
}
