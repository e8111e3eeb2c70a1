package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/store"
)

const persistTimeout = 5 * time.Second

// ExpiryFunc is invoked exactly once when a countdown reaches zero.
type ExpiryFunc func()

// tickHandle identifies one ticking schedule. Cancelling a handle is
// idempotent; a replaced handle's loop exits on its next wakeup at the
// latest.
type tickHandle struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func (h *tickHandle) cancel() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Countdown ticks a session's remaining time down once per interval and
// persists the value on every tick. The write is fire-and-forget: ticking
// never waits on the store. Writes are serialized and the persisted value
// never climbs within one schedule; Cancel waits for queued writes to land.
// The active schedule is an owned handle — starting again replaces it, so a
// Countdown never runs two tickers at once.
type Countdown struct {
	kv       store.KeyStore
	key      string
	interval time.Duration
	log      zerolog.Logger

	mu        sync.Mutex
	remaining int
	handle    *tickHandle

	writes sync.WaitGroup

	// writeMu serializes store writes; gen discards writes from a replaced
	// schedule and floor keeps the persisted value non-increasing.
	writeMu sync.Mutex
	gen     int
	floor   int
}

// NewCountdown creates a stopped countdown for one session.
func NewCountdown(kv store.KeyStore, sessionID string, log zerolog.Logger) *Countdown {
	return &Countdown{
		kv:       kv,
		key:      store.Key(store.FieldTimer, sessionID),
		interval: time.Second,
		log: log.With().
			Str("component", "countdown").
			Str("session_id", sessionID).
			Logger(),
	}
}

// Start begins ticking from remainingSeconds, replacing any live schedule.
// Used both on fresh start (full exam duration) and on recovery (persisted
// remaining value).
func (c *Countdown) Start(remainingSeconds int, onExpire ExpiryFunc) {
	c.mu.Lock()
	if c.handle != nil {
		c.handle.cancel()
	}
	h := &tickHandle{stop: make(chan struct{})}
	c.handle = h
	c.remaining = remainingSeconds
	interval := c.interval
	c.mu.Unlock()

	c.writeMu.Lock()
	c.gen++
	gen := c.gen
	c.floor = remainingSeconds + 1
	c.writeMu.Unlock()

	go c.run(h, gen, interval, onExpire)
}

func (c *Countdown) run(h *tickHandle, gen int, interval time.Duration, onExpire ExpiryFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.handle != h {
				// Replaced by a newer schedule.
				c.mu.Unlock()
				return
			}
			c.remaining--
			v := c.remaining
			expired := v <= 0
			if expired {
				h.cancel()
				c.handle = nil
			}
			c.persist(v, gen)
			c.mu.Unlock()

			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}

// persist queues a write of the remaining value without blocking the tick
// loop. The write is skipped if a newer schedule took over or a lower value
// already landed. Failures are logged, never surfaced. Called with c.mu held
// so the write is registered before Cancel starts draining.
func (c *Countdown) persist(v, gen int) {
	if v < 0 {
		v = 0
	}
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		if gen != c.gen || v >= c.floor {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.kv.Set(ctx, c.key, strconv.Itoa(v)); err != nil {
			c.log.Warn().Err(err).Int("remaining", v).Msg("Timer persist failed")
			return
		}
		c.floor = v
	}()
}

// Cancel stops ticking and waits for queued timer writes to land, so no
// write trails the cancel. Safe to call at any time, any number of times.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	if c.handle != nil {
		c.handle.cancel()
		c.handle = nil
	}
	c.mu.Unlock()
	c.writes.Wait()
}

// Remaining returns the in-memory remaining seconds.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
