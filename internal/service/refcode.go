package service

import (
	"crypto/rand"
	"math/big"
)

const (
	RefCodeLength   = 20
	refCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewRefCode returns a random alphanumeric order reference drawn from
// crypto/rand. Refund requests look orders up by this code alone.
func NewRefCode() (string, error) {
	max := big.NewInt(int64(len(refCodeAlphabet)))
	b := make([]byte, RefCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = refCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
