package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
)

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomFrom draws n characters uniformly from alphabet.
func RandomFrom(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[k.Int64()]
	}
	return string(out), nil
}

// NewRequestID returns 5 random upper-case letters followed by 5 random digits,
// e.g. "QWERT04817".
func NewRequestID() (string, error) {
	l, err := RandomFrom(letters, 5)
	if err != nil {
		return "", err
	}
	d, err := RandomFrom(digits, 5)
	if err != nil {
		return "", err
	}
	return l + d, nil
}

// NewTraceID returns 15 random decimal digits. Leading zeros are allowed.
func NewTraceID() (string, error) {
	return RandomFrom(digits, 15)
}

// Wipe overwrites b with zeros. Use it on secrets read from a terminal once
// they are no longer needed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
