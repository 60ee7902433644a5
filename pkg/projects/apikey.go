package projects

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	apiKeyPrefix   = "lv_live_"
	apiKeyLength   = 32
	apiKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateAPIKey returns a fresh project API key: a fixed prefix followed by
// 32 characters drawn uniformly from the alphanumeric alphabet. Uniqueness
// across projects is enforced by the store's unique index at insert time.
func GenerateAPIKey() (string, error) {
	alphabetLen := big.NewInt(int64(len(apiKeyAlphabet)))
	buf := make([]byte, apiKeyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		buf[i] = apiKeyAlphabet[n.Int64()]
	}
	return apiKeyPrefix + string(buf), nil
}
