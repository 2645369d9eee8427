package turnlease

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLease(t *testing.T) (*Lease, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, 5*time.Second), mr
}

func TestAcquireRelease(t *testing.T) {
	l, _ := newTestLease(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, 42)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if _, err := l.Acquire(ctx, 42); err != ErrHeld {
		t.Fatalf("second Acquire: got %v, want ErrHeld", err)
	}
	if err := l.Release(ctx, 42, token); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := l.Acquire(ctx, 42); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
}

func TestLeasesAreIndependentPerGame(t *testing.T) {
	l, _ := newTestLease(t)
	ctx := context.Background()
	if _, err := l.Acquire(ctx, 1); err != nil {
		t.Fatalf("Acquire game 1: %v", err)
	}
	if _, err := l.Acquire(ctx, 2); err != nil {
		t.Fatalf("Acquire game 2: %v", err)
	}
}

func TestReleaseWithWrongTokenKeepsLease(t *testing.T) {
	l, _ := newTestLease(t)
	ctx := context.Background()
	if _, err := l.Acquire(ctx, 7); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(ctx, 7, "stale-token"); err != nil {
		t.Fatalf("Release with wrong token: %v", err)
	}
	if _, err := l.Acquire(ctx, 7); err != ErrHeld {
		t.Fatalf("lease was stolen: got %v, want ErrHeld", err)
	}
}

func TestLeaseExpires(t *testing.T) {
	l, mr := newTestLease(t)
	ctx := context.Background()
	if _, err := l.Acquire(ctx, 9); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	mr.FastForward(6 * time.Second)
	if _, err := l.Acquire(ctx, 9); err != nil {
		t.Fatalf("Acquire after expiry: %v", err)
	}
}

func TestNewFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	l, err := NewFromURL(fmt.Sprintf("redis://%s/0", mr.Addr()), 0)
	if err != nil {
		t.Fatalf("NewFromURL: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	if _, err := l.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
}
