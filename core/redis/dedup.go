package redis

import (
	"context"
	"fmt"
	"time"
)

const dedupMarker = "TRANSFER"

// SignatureDeduper records already-relayed transaction signatures with a TTL.
// The guarantee is best effort: SETNX makes a single check-and-set atomic,
// but a duplicate that slips through a redis outage is tolerated, a silently
// dropped alert is not.
type SignatureDeduper struct{}

func NewSignatureDeduper() *SignatureDeduper {
	return &SignatureDeduper{}
}

func dedupKey(signature string) string {
	return fmt.Sprintf("dedup:tx:%s", signature)
}

// CheckAndMark reports whether the signature was already seen within the TTL
// window. On the first sighting it writes the marker with the given TTL in
// the same call.
func (d *SignatureDeduper) CheckAndMark(ctx context.Context, signature string, ttl time.Duration) (bool, error) {
	set, err := GetRedisInst().SetNX(ctx, dedupKey(signature), dedupMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check %s failed, %w", signature, err)
	}

	return !set, nil
}
