// Package ratelimit spaces out repeated commands per player with a jittered
// cooldown.
package ratelimit

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/faideww/fishon/internal/clock"
)

type Limiter struct {
	mu   sync.Mutex
	next map[string]time.Time
	min  time.Duration
	max  time.Duration
	clk  clock.Clock
	rng  *mrand.Rand
}

// NewLimiter hands out cooldowns in [min, max). A zero min disables the
// limiter entirely.
func NewLimiter(min, max time.Duration, clk clock.Clock) *Limiter {
	if max < min {
		max = min
	}

	seed := func() int64 {
		var b [8]byte
		if _, err := rand.Read(b[:]); err == nil {
			return int64(binary.LittleEndian.Uint64(b[:]))
		}
		return time.Now().UnixNano()
	}()

	return &Limiter{
		next: make(map[string]time.Time),
		min:  min,
		max:  max,
		clk:  clock.OrReal(clk),
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// TryKey reports whether key may act now and, if not, how long it has to
// wait. A successful try starts a new cooldown.
func (l *Limiter) TryKey(key string) (bool, time.Duration) {
	if l.min <= 0 {
		return true, 0
	}
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.next[key]; ok && now.Before(until) {
		return false, until.Sub(now)
	}

	l.next[key] = now.Add(l.nextCooldown())
	return true, 0
}

// Try limits one player's use of one command bucket.
func (l *Limiter) Try(userId, bucket string) (bool, time.Duration) {
	return l.TryKey(key(userId, bucket))
}

func (l *Limiter) nextCooldown() time.Duration {
	if l.min == l.max {
		return l.min
	}
	span := l.max - l.min

	jitter := time.Duration(l.rng.Int63n(int64(span)))
	return l.min + jitter
}

// Sweep forgets every cooldown that has already expired and returns how
// many were dropped.
func (l *Limiter) Sweep() int {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, until := range l.next {
		if !now.Before(until) {
			delete(l.next, k)
			n++
		}
	}
	return n
}

func key(userId, bucket string) string {
	return "u:" + userId + "|b:" + bucket
}
