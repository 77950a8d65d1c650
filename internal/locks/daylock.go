package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/httperr"
)

// releaseScript deletes the lock key only when it still holds our
// token, so an expired lock taken over by another allocation is never
// released by the original owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// DayLock serializes appointment allocation per (organization, day).
// When Redis is unavailable the lock degrades to a no-op: the unique
// index on (organization_id, day, order_number) still guards
// correctness, the lock only removes retry churn.
type DayLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDayLock(rdb *redis.Client) *DayLock {
	return &DayLock{rdb: rdb, ttl: 10 * time.Second}
}

func (l *DayLock) key(organizationID uint, day time.Time) string {
	return fmt.Sprintf("alloc:%d:%s", organizationID, day.Format("2006-01-02"))
}

// Acquire blocks briefly for the per-day allocation lock and returns a
// release func. Callers must always call release.
func (l *DayLock) Acquire(
	ctx context.Context,
	organizationID uint,
	day time.Time,
) (func(), error) {

	if l == nil || l.rdb == nil {
		return func() {}, nil
	}

	key := l.key(organizationID, day)
	token := uuid.NewString()

	for attempt := 0; attempt < 20; attempt++ {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			// Redis down: proceed unlocked.
			return func() {}, nil
		}
		if ok {
			return func() {
				releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return func() {}, httperr.ErrBusiness("allocation_busy")
}
