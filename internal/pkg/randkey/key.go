package randkey

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var syms = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// Generate generates a new random key of n symbols
func Generate(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("wrong key len %d", n)
	}
	b := make([]rune, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(syms))))
		if err != nil {
			return "", fmt.Errorf("can't generate random: %w", err)
		}
		b[i] = syms[v.Int64()]
	}
	return string(b), nil
}
