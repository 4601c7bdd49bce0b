package cache

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fraudlens/fraudlens/internal/domain"
)

func TestLRUCache(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(3)
	defer c.Close()

	t.Run("MissReturnsNil", func(t *testing.T) {
		val, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil on miss, got %q", val)
		}
	})

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "collection", []byte(`[]`), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		val, err := c.Get(ctx, "collection")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(val, []byte(`[]`)) {
			t.Errorf("expected [], got %q", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "gone", []byte("x"), time.Minute)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		val, _ := c.Get(ctx, "gone")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		c.Set(ctx, "ephemeral", []byte("x"), -time.Second)
		val, _ := c.Get(ctx, "ephemeral")
		if val != nil {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("EvictsOldest", func(t *testing.T) {
		small := NewLRUCache(2)
		defer small.Close()

		small.Set(ctx, "a", []byte("1"), time.Minute)
		small.Set(ctx, "b", []byte("2"), time.Minute)
		small.Get(ctx, "a") // touch a so b is the eviction candidate
		small.Set(ctx, "c", []byte("3"), time.Minute)

		if val, _ := small.Get(ctx, "b"); val != nil {
			t.Error("expected b to be evicted")
		}
		if val, _ := small.Get(ctx, "a"); val == nil {
			t.Error("expected a to survive")
		}
	})
}

func TestLRUCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(100)
	defer c.Close()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k-%d", i%10)
				c.Set(ctx, key, []byte{byte(g)}, time.Minute)
				c.Get(ctx, key)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

func TestFactory(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		c, err := New(domain.CacheConfig{Type: "memory", LocalMaxSize: 10})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer c.Close()
		if err := c.Ping(context.Background()); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		if _, err := New(domain.CacheConfig{Type: "memcached"}); err == nil {
			t.Error("expected error for unknown cache type")
		}
	})
}
