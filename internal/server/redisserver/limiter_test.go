package redisserver

import (
	"testing"
	"time"
)

func TestIPLimiter_Allow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newIPLimiter(1, 2)
	l.now = func() time.Time { return now }

	if !l.allow("10.0.0.1") || !l.allow("10.0.0.1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.allow("10.0.0.1") {
		t.Error("third request within the same instant should be limited")
	}
	if !l.allow("10.0.0.2") {
		t.Error("other IPs have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.allow("10.0.0.1") {
		t.Error("bucket should refill after one second")
	}
	if got := l.size(); got != 2 {
		t.Errorf("size() = %d, want 2", got)
	}
}

func TestIPLimiter_ZeroBurst(t *testing.T) {
	l := newIPLimiter(10, 0)
	if l.burst != 1 {
		t.Errorf("burst = %d, want 1", l.burst)
	}
	if !l.allow("10.0.0.1") {
		t.Error("first request should be allowed")
	}
}

func TestIPLimiter_Sweep(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newIPLimiter(100, 100)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(5 * time.Minute)
	l.allow("10.0.0.2")
	now = now.Add(6 * time.Minute)

	if removed := l.sweep(10 * time.Minute); removed != 1 {
		t.Errorf("sweep() = %d, want 1", removed)
	}
	if got := l.size(); got != 1 {
		t.Errorf("size() = %d, want 1", got)
	}
}
