package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
)

func newTestKeyed(cfg KeyedConfig, clock *fakeClock) *KeyedLimiter {
	cfg.CleanupPeriod = time.Hour
	kl := NewKeyedLimiter(cfg)
	kl.now = clock.Now
	return kl
}

func lookup(kl *KeyedLimiter, key string) *keyedEntry {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return kl.entries[key]
}

func TestKeyedLimiterAllow(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	kl := newTestKeyed(KeyedConfig{Name: "chat", Burst: 1, RefillRate: 0.1, Metrics: m}, newFakeClock())
	defer kl.Stop()

	if !kl.Allow("U1") {
		t.Error("first request for U1 denied")
	}
	if kl.Allow("U1") {
		t.Error("second request for U1 allowed with burst 1")
	}
	if !kl.Allow("U2") {
		t.Error("first request for U2 denied")
	}
	if !kl.Allow("") {
		t.Error("empty key should always be allowed")
	}
	if got := testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("chat")); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
}

func TestKeyedLimiterDailyLimit(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	kl := newTestKeyed(KeyedConfig{Name: "chat", Burst: 100, RefillRate: 100, DailyLimit: 3}, clock)
	defer kl.Stop()

	for i := range 3 {
		if !kl.Allow("U1") {
			t.Fatalf("request %d denied under daily limit", i+1)
		}
	}
	if kl.Allow("U1") {
		t.Error("request allowed over daily limit")
	}
	e := lookup(kl, "U1")
	if got := e.daily.remaining(); got != 0 {
		t.Errorf("daily remaining = %d, want 0", got)
	}
	// A denied daily check must not drain the bucket.
	if got := tokens(e.bucket); got < 96 {
		t.Errorf("bucket tokens = %v, want >= 96", got)
	}
}

func TestKeyedLimiterEvictIdle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := metrics.New(prometheus.NewRegistry())
	kl := newTestKeyed(KeyedConfig{Name: "chat", Burst: 5, RefillRate: 1, Metrics: m}, clock)
	defer kl.Stop()

	kl.Allow("U1")
	kl.Allow("U2")
	if got := kl.ActiveCount(); got != 2 {
		t.Fatalf("ActiveCount = %d, want 2", got)
	}

	kl.evictIdle()
	if got := kl.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount before refill = %d, want 2", got)
	}

	clock.Advance(10 * time.Second)
	kl.evictIdle()
	if got := kl.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after refill = %d, want 0", got)
	}
	if got := testutil.ToFloat64(m.RateLimiterActiveKeys.WithLabelValues("chat")); got != 0 {
		t.Errorf("active keys gauge = %v, want 0", got)
	}
}

func TestKeyedLimiterRetriesEvictedEntry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	kl := newTestKeyed(KeyedConfig{Name: "chat", Burst: 5, RefillRate: 1, DailyLimit: 1}, clock)
	defer kl.Stop()

	// An entry looked up just before the cleanup loop removes it.
	stale := kl.entry("U1")
	kl.evictIdle()

	if _, live := kl.take(stale); live {
		t.Fatal("take() on an evicted entry reported it live")
	}
	if !kl.Allow("U1") {
		t.Fatal("first request for U1 denied")
	}
	if lookup(kl, "U1") == stale {
		t.Error("Allow() reused the evicted entry")
	}
	if kl.Allow("U1") {
		t.Error("second request allowed over daily limit 1")
	}
}

func TestKeyedLimiterEvictionKeepsDailyCount(t *testing.T) {
	t.Parallel()

	for range 200 {
		kl := newTestKeyed(KeyedConfig{Name: "chat", Burst: 100, RefillRate: 100, DailyLimit: 1}, newFakeClock())

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		for range 2 {
			wg.Go(func() {
				if kl.Allow("U1") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			})
		}
		wg.Go(kl.evictIdle)
		wg.Wait()
		kl.Stop()

		if allowed != 1 {
			t.Fatalf("allowed = %d, want exactly 1 with daily limit 1", allowed)
		}
	}
}

func TestKeyedLimiterStopTwice(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Name: "chat", Burst: 1, RefillRate: 1})
	kl.Stop()
	kl.Stop()
}

func TestKeyedLimiterConcurrent(t *testing.T) {
	t.Parallel()

	kl := newTestKeyed(KeyedConfig{Name: "chat", Burst: 10, RefillRate: 0}, newFakeClock())
	defer kl.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Go(func() {
			if kl.Allow("U1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed = %d, want 10", allowed)
	}
}
