package store

import (
	"crypto/rand"
	"encoding/hex"
)

// randomHex returns n hex characters of cryptographically random data.
func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read on a supported platform does not fail; if it
		// somehow did, a zero buffer still yields a valid-shaped, merely
		// predictable, ETag rather than a panic.
	}
	return hex.EncodeToString(buf)[:n]
}
