package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var fired int32
	d := NewDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("burst must coalesce to one refresh, got %d", got)
	}

	d.Trigger()
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Fatalf("later trigger must fire again, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	var fired int32
	d := NewDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	d.Trigger()
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("stopped debouncer must not fire, got %d", got)
	}
}
