package cache

import (
	"testing"
	"time"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("get: %v %v", v, ok)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired key still present")
	}
}

func TestTTLCacheDeleteFunc(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("dash|1", 1, time.Minute)
	c.Set("dash|2", 2, time.Minute)
	c.Set("other|1", 3, time.Minute)

	c.DeleteFunc(func(key string) bool { return key[:4] == "dash" })

	if _, ok := c.Get("dash|1"); ok {
		t.Fatal("matched key survived")
	}
	if _, ok := c.Get("other|1"); !ok {
		t.Fatal("unmatched key dropped")
	}
}

func TestTTLCacheZeroTTLIsNoop(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, 0)
	if _, ok := c.Get("a"); ok {
		t.Fatal("zero ttl must not store")
	}
}
