package login

import (
	"crypto/rand"
	"encoding/hex"
)

// newSessionToken returns a 48-character hex token for the session cookie.
// The token is the whole identity; there are no user accounts behind it.
func newSessionToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
