package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the source of chance behind room content and generated secrets.
// Tests swap in mocks.MockRandom to get a fixed world.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Chance reports true with the given percent probability (0-100)
	Chance(percent int) bool

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// Chance rolls a percentile die
func (r *CryptoRandom) Chance(percent int) bool {
	return r.Intn(100) < percent
}

// String generates a random string of the given length from the given alphabet.
// Token secrets are drawn this way when none is configured.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
