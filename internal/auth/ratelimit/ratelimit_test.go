package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := New(time.Second)
	for i := 0; i < 5; i++ {
		if !l.Allow("key", 5) {
			t.Fatalf("request %d unexpectedly denied", i)
		}
	}
	if l.Allow("key", 5) {
		t.Fatal("6th request should have been denied")
	}
}

func TestResetClearsState(t *testing.T) {
	l := New(time.Second)
	for i := 0; i < 3; i++ {
		l.Allow("key", 3)
	}
	if l.Allow("key", 3) {
		t.Fatal("expected limit exhausted before reset")
	}
	l.Reset("key")
	if !l.Allow("key", 3) {
		t.Fatal("expected allow immediately after reset")
	}
}

func TestIndependentKeys(t *testing.T) {
	l := New(time.Second)
	for i := 0; i < 2; i++ {
		if !l.Allow("a", 2) {
			t.Fatalf("key a request %d denied", i)
		}
	}
	if !l.Allow("b", 2) {
		t.Fatal("key b should have its own budget")
	}
}
