package cache

import (
	"fmt"
)

// Redis holds only ephemeral security state: rate-limit windows and revoked
// token ids. Feed data is never cached, so like and follow counts stay live.
const (
	keyNamespace        = "chirp"
	rateLimitKeyPattern = keyNamespace + ":rl:%s:%s"
	revokedKeyPattern   = keyNamespace + ":revoked:%s"
)

// RateLimitKey returns the counter key for resource and caller id.
func RateLimitKey(resource, id string) string {
	return fmt.Sprintf(rateLimitKeyPattern, resource, id)
}

// RevokedTokenKey returns the marker key for a revoked token id.
func RevokedTokenKey(tokenID string) string {
	return fmt.Sprintf(revokedKeyPattern, tokenID)
}
