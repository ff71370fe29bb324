package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// SecretKeyAlphabet is the character set used for generated signing keys.
const SecretKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const secretKeyLength = 48

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the
// requested length drawn from the alphabet.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}

// GenerateSecretKey produces a fresh token-signing key. Used as the fallback
// when no SECRET_KEY is configured, so development setups still sign tokens
// with something unguessable.
func GenerateSecretKey() (string, error) {
	return RandomString(secretKeyLength, SecretKeyAlphabet)
}
