// Package usage enforces the per-tier daily allowance of AI operations. The
// counter in Redis is the authority; anything clients display is a mirror
// taken from charged responses.
package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Daily allowances per subscription tier. Zero means unlimited.
const (
	FreeDailyLimit  = 15
	ProDailyLimit   = 150
	EliteDailyLimit = 400
)

// Counter keys outlive their day so a client in a trailing timezone still
// sees yesterday's spend, then expire on their own.
const keyTTL = 48 * time.Hour

// Quota is the usage mirror embedded in charged responses.
type Quota struct {
	Used    int64     `json:"used"`
	Limit   int64     `json:"limit"`
	ResetAt time.Time `json:"resetAt"`
}

// Limiter counts charged operations per user per UTC day.
type Limiter struct {
	rdb *redis.Client
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// TierLimit returns the daily allowance for a tier; unrecognized tiers get
// the free allowance.
func TierLimit(tier string) int64 {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "premium":
		return 0
	case "elite":
		return EliteDailyLimit
	case "pro":
		return ProDailyLimit
	default:
		return FreeDailyLimit
	}
}

// DayKey returns the counter key for a user on the given instant's UTC day.
func DayKey(userID string, now time.Time) string {
	return fmt.Sprintf("usage:%s:%s", userID, now.UTC().Format("2006-01-02"))
}

// Charge counts one operation and reports whether it was within quota. The
// increment is a single atomic INCR, so concurrent requests cannot double
// spend the last unit.
func (l *Limiter) Charge(ctx context.Context, userID, tier string) (Quota, bool, error) {
	now := time.Now()
	key := DayKey(userID, now)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Quota{}, false, fmt.Errorf("usage counter: %w", err)
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, keyTTL)
	}

	limit := TierLimit(tier)
	quota := Quota{Used: count, Limit: limit, ResetAt: nextMidnightUTC(now)}
	return quota, limit <= 0 || count <= limit, nil
}

// Peek reads today's spend without charging.
func (l *Limiter) Peek(ctx context.Context, userID, tier string) (Quota, error) {
	now := time.Now()
	count, err := l.rdb.Get(ctx, DayKey(userID, now)).Int64()
	if err == redis.Nil {
		count = 0
	} else if err != nil {
		return Quota{}, fmt.Errorf("usage counter: %w", err)
	}
	return Quota{Used: count, Limit: TierLimit(tier), ResetAt: nextMidnightUTC(now)}, nil
}

func nextMidnightUTC(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
