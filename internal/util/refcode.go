package util

import (
	"crypto/rand"
	"math/big"
)

const refCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewRefCode returns the opaque 20-character code a placed order is addressed
// by in refund lookups.
func NewRefCode() string {
	b := make([]byte, 20)
	max := big.NewInt(int64(len(refCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken
			panic(err)
		}
		b[i] = refCodeAlphabet[n.Int64()]
	}
	return string(b)
}
