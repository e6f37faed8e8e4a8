package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	// tokenBytes of entropy before encoding; encodes to 43 URL-safe characters.
	tokenBytes = 32

	// CodeLength is the fixed length of the human-enterable invitation code.
	CodeLength = 8

	// codeAlphabet excludes visually ambiguous characters (0, O, I, l, 1, L)
	// so codes survive being read over the phone or typed from paper.
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

// Generator produces the two invitation credentials. Both draw from
// crypto/rand; uniqueness comes from keyspace size, with the store's unique
// constraints as the backstop.
type Generator interface {
	// Token returns a high-entropy URL-safe secret of fixed length.
	Token() (string, error)
	// Code returns a short human-typable code of length CodeLength.
	Code() (string, error)
}

type cryptoGenerator struct{}

// NewGenerator creates a Generator backed by crypto/rand.
func NewGenerator() Generator {
	return cryptoGenerator{}
}

// Token implements Generator.
func (cryptoGenerator) Token() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Code implements Generator.
func (cryptoGenerator) Code() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random index: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
