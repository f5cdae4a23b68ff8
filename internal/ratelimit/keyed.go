package ratelimit

import (
	"sync"
	"time"

	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name labels the limiter in metrics (e.g., "chat").
	Name string

	// Per-key token bucket
	Burst      float64
	RefillRate float64 // tokens per second

	// Optional rolling 24h cap per key (0 = disabled)
	DailyLimit int

	// How often idle keys are evicted
	CleanupPeriod time.Duration

	Metrics *metrics.Metrics
}

// KeyedLimiter keeps a token bucket, plus an optional daily window, per key.
// Keys whose bucket has fully refilled are evicted periodically; call Stop
// to end the cleanup goroutine.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	cfg     KeyedConfig
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// The entry mutex makes the bucket and window check-then-consume atomic.
// evicted is set under mu once the entry has left the map.
type keyedEntry struct {
	mu      sync.Mutex
	bucket  *Limiter
	daily   *window
	evicted bool
}

// NewKeyedLimiter creates a KeyedLimiter and starts its cleanup loop.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		cfg:     cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow takes one request for key from both the bucket and the daily window.
// An empty key is always allowed.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	for {
		if allowed, live := kl.take(kl.entry(key)); live {
			return allowed
		}
	}
}

// take consumes from e. live is false when e was evicted after it was
// looked up; the caller must fetch the entry again.
func (kl *KeyedLimiter) take(e *keyedEntry) (allowed, live bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.evicted {
		return false, false
	}
	if !e.daily.check() || !e.bucket.check() {
		if kl.cfg.Metrics != nil {
			kl.cfg.Metrics.RecordRateLimiterDrop(kl.cfg.Name)
		}
		return false, true
	}
	e.daily.consume()
	e.bucket.consume()
	return true, true
}

func (kl *KeyedLimiter) entry(key string) *keyedEntry {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return e
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if e, ok = kl.entries[key]; ok {
		return e
	}
	e = &keyedEntry{
		bucket: newLimiter(kl.cfg.Burst, kl.cfg.RefillRate, kl.now),
		daily:  newWindow(kl.cfg.DailyLimit, 24*time.Hour, kl.now),
	}
	kl.entries[key] = e
	return e
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.evictIdle()
		}
	}
}

// evictIdle drops keys whose bucket is full. Keys with a daily cap are kept
// while the window still counts requests.
func (kl *KeyedLimiter) evictIdle() {
	kl.mu.Lock()
	for key, e := range kl.entries {
		e.mu.Lock()
		if e.bucket.IsFull() && (e.daily == nil || e.daily.remaining() == kl.cfg.DailyLimit) {
			e.evicted = true
			delete(kl.entries, key)
		}
		e.mu.Unlock()
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	if kl.cfg.Metrics != nil {
		kl.cfg.Metrics.SetRateLimiterActiveKeys(kl.cfg.Name, active)
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	kl.once.Do(func() { close(kl.stopCh) })
}
