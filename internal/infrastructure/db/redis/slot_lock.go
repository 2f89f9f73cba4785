package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salonbook/salon-api/internal/core/domain"
)

const defaultLockTTL = 5 * time.Second

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker serialises the count-then-insert of a reservation per slot.
// Key format: slot:<YYYY-MM-DD>:<time>
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSlotLocker creates a SlotLocker. If ttl <= 0, defaultLockTTL is used.
func NewSlotLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *SlotLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &SlotLocker{client: client, ttl: ttl, log: log}
}

// Lock acquires the slot lock or returns domain.ErrSlotBusy when another
// request holds it. The returned func releases the lock.
func (l *SlotLocker) Lock(ctx context.Context, date time.Time, timeLabel string) (func(), error) {
	key := slotKey(date, timeLabel)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("slot lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrSlotBusy
	}

	return func() {
		// The request context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("slot lock release failed")
		}
	}, nil
}

func slotKey(date time.Time, timeLabel string) string {
	return fmt.Sprintf("slot:%s:%s", domain.SlotDay(date).Format("2006-01-02"), timeLabel)
}
