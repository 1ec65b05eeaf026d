package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList stores revoked token ids until the token would have expired.
// Key format: revoked:<jti>
type RevocationList struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRevocationList creates a RevocationList wrapping the given Redis client.
func NewRevocationList(client redis.Cmdable) *RevocationList {
	return &RevocationList{client: client, now: time.Now}
}

// Revoke marks tokenID as revoked. Tokens already past until are skipped,
// their signature check rejects them anyway.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl, ok := remaining(r.now(), until)
	if !ok {
		return nil
	}
	if err := r.client.Set(ctx, key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func key(tokenID string) string {
	return "revoked:" + tokenID
}

// remaining returns the time left until expiry, rounded up to a whole second
// so the key never outlives the token by less than Redis' resolution.
func remaining(now, until time.Time) (time.Duration, bool) {
	d := until.Sub(now)
	if d <= 0 {
		return 0, false
	}
	if r := d % time.Second; r != 0 {
		d += time.Second - r
	}
	return d, true
}
