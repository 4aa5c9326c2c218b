package utils

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"train-booking/internal/status"
)

const bookingLockKey = "lock:booking"

// releaseLockScript deletes the lock only while this holder's token is
// still the stored value. After a TTL expiry another process may hold the
// lock under its own token; a plain DEL here would evict that holder.
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// BookingLock serializes mutating reservation operations. Backed by Redis
// it is a cross-process single-writer arbiter (SET NX with an expiry so a
// crashed holder cannot wedge the system); without a Redis client it
// degrades to an in-process mutex, which is enough for a single embedded
// instance.
type BookingLock struct {
	Redis *redis.Client
	TTL   time.Duration

	mu sync.Mutex

	tokenMu sync.Mutex
	token   string
}

func NewBookingLock(client *redis.Client, ttl time.Duration) *BookingLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BookingLock{Redis: client, TTL: ttl}
}

// Acquire takes the lock. When another process holds it, ErrLockBusy is
// returned immediately; the caller may retry. Each successful acquisition
// stores a fresh token as the lock value so Release can prove the lock is
// still this holder's.
func (l *BookingLock) Acquire(ctx context.Context) error {
	if l.Redis == nil {
		l.mu.Lock()
		return nil
	}
	token, err := GenerateCode(16)
	if err != nil {
		return fmt.Errorf("acquire booking lock: %w", err)
	}
	ok, err := l.Redis.SetNX(ctx, bookingLockKey, token, l.TTL).Result()
	if err != nil {
		return fmt.Errorf("acquire booking lock: %w", err)
	}
	if !ok {
		return status.ErrLockBusy
	}
	l.tokenMu.Lock()
	l.token = token
	l.tokenMu.Unlock()
	return nil
}

func (l *BookingLock) Release(ctx context.Context) {
	if l.Redis == nil {
		l.mu.Unlock()
		return
	}
	l.tokenMu.Lock()
	token := l.token
	l.token = ""
	l.tokenMu.Unlock()

	res, err := l.Redis.Eval(ctx, releaseLockScript, []string{bookingLockKey}, token).Result()
	if err != nil {
		log.Printf("Error releasing booking lock: %v", err)
		return
	}
	if n, ok := res.(int64); ok && n == 0 {
		log.Printf("Booking lock expired before release; left the current holder in place")
	}
}
