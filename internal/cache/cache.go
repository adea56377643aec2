// Package cache provides the decision cache keyed by applicant digest.
// Identical applicants re-score to identical decisions, so cached entries
// can be served without touching the engine or the ledger.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
