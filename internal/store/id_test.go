package store

import (
	"testing"
	"time"
)

func TestNewIDMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		if next <= prev {
			t.Fatalf("ids not increasing: %s <= %s", next, prev)
		}
		prev = next
	}
}

func TestIDTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := IDTime(NewID())
	if err != nil {
		t.Fatalf("IDTime: %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Fatalf("unexpected id time %v", ts)
	}
	if _, err := IDTime("nope"); err == nil {
		t.Fatal("expected parse error")
	}
}
