package healthcheck

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCheck pings the Redis server backing the alert cooldowns.
type RedisCheck struct {
	client redis.Cmdable
}

// NewRedisCheck returns a check pinging client.
func NewRedisCheck(client redis.Cmdable) RedisCheck {
	return RedisCheck{client: client}
}

func (c RedisCheck) Name() string {
	return "redis"
}

func (c RedisCheck) Result(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Heartbeat records the last successful run of a periodic job and fails
// when the job has not completed within maxAge.
type Heartbeat struct {
	name   string
	maxAge time.Duration
	now    func() time.Time
	last   atomic.Int64
}

// NewHeartbeat returns a Heartbeat for the job called name.
func NewHeartbeat(name string, maxAge time.Duration) *Heartbeat {
	return &Heartbeat{
		name:   name,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Beat records a successful run.
func (h *Heartbeat) Beat() {
	h.last.Store(h.now().UnixNano())
}

func (h *Heartbeat) Name() string {
	return h.name
}

func (h *Heartbeat) Result(_ context.Context) error {
	last := h.last.Load()
	if last == 0 {
		return fmt.Errorf("%s has not completed yet", h.name)
	}

	age := h.now().Sub(time.Unix(0, last))
	if age > h.maxAge {
		return fmt.Errorf("%s last completed %s ago", h.name, age.Round(time.Second))
	}
	return nil
}
