package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// TokenBytes is the entropy of tokens generated by GenerateRandomString.
const TokenBytes = 32

// GenerateRandomString returns TokenBytes random bytes encoded as unpadded
// base64url, safe to use as a query parameter.
func GenerateRandomString() (string, error) {
	b := make([]byte, TokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
