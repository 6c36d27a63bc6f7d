package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/google/uuid"
)

// releaseScript deletes the lock only if it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

const releaseTimeout = 5 * time.Second

// GroupLock is a per-group mutual exclusion lock shared by every instance
// using the same redis. A lock outlives a crashed holder by at most ttl.
type GroupLock struct {
	rdb Commander
	ttl time.Duration

	logger *logger.Logger
}

func NewGroupLock(rdb Commander, ttl time.Duration, logger *logger.Logger) *GroupLock {
	return &GroupLock{rdb: rdb, ttl: ttl, logger: logger}
}

func lockKey(groupID int64) string {
	return fmt.Sprintf("%slock:group:%d", keyPrefix, groupID)
}

// TryLock takes the lock of groupID without waiting. ok is false when
// another holder owns it.
func (l *GroupLock) TryLock(ctx context.Context, groupID int64) (func(), bool, error) {
	key := lockKey(groupID)
	token := uuid.NewString()

	acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := l.rdb.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Int64("group_id", groupID).Msg("error releasing group lock, it expires on its own")
		}
	}
	return unlock, true, nil
}
