package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLockerSerialisesKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "allocation:a")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Fatalf("expected one holder at a time, saw %d", maxSeen.Load())
	}
	if len(l.locks) != 0 {
		t.Fatalf("released keys should be dropped, %d left", len(l.locks))
	}
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("Lock(a): %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("Lock(b) should not wait on a: %v", err)
	}
	unlockB()
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock() // second release is a no-op

	again, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	again()
}

func TestMemoryCacheJSONRoundTrip(t *testing.T) {
	c := NewMemoryCache(DefaultConfig())
	defer c.Close()
	ctx := context.Background()

	type master struct {
		Name string `json:"name"`
	}
	if err := SetJSON(ctx, c, "master:item:1", master{Name: "cable"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	got, ok, err := GetJSON[master](ctx, c, "master:item:1")
	if err != nil || !ok {
		t.Fatalf("GetJSON: ok=%v err=%v", ok, err)
	}
	if got.Name != "cable" {
		t.Errorf("name = %q", got.Name)
	}

	_, ok, err = GetJSON[master](ctx, c, "master:item:missing")
	if err != nil || ok {
		t.Errorf("miss should be ok=false err=nil, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(DefaultConfig())
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !IsMiss(err) {
		t.Fatalf("expected a miss after expiry, got %v", err)
	}
}

func TestDisabledCacheMisses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c := NewMemoryCache(cfg)
	defer c.Close()

	_, ok, err := GetJSON[string](context.Background(), c, "k")
	if ok || err != nil {
		t.Fatalf("disabled cache should miss quietly, got ok=%v err=%v", ok, err)
	}
}

func TestFallbackWithoutRedis(t *testing.T) {
	fc := NewFallbackCache(&FallbackConfig{Memory: DefaultConfig()})
	defer fc.Close()
	if fc.Redis() != nil {
		t.Fatal("no redis address should mean memory only")
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := fc.Get(ctx, "k")
	if err != nil || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}
