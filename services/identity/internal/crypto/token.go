package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// refreshPrefix marks huwaari refresh tokens so they are recognisable in
// logs and secret scanners.
const refreshPrefix = "hwr_"

const refreshBytes = 32

// NewRefreshToken returns a prefixed random token. Only HashToken(token) is
// persisted in refresh_token_sessions.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return refreshPrefix + hex.EncodeToString(buf), nil
}

// IsRefreshToken reports whether token has the shape NewRefreshToken
// produces, so malformed input can be rejected without a lookup.
func IsRefreshToken(token string) bool {
	body, ok := strings.CutPrefix(token, refreshPrefix)
	if !ok || len(body) != hex.EncodedLen(refreshBytes) {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
