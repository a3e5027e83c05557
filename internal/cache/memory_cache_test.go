package cache

import (
	"testing"
	"time"
)

func TestPresenceCache_Symbols(t *testing.T) {
	c := NewPresenceCache(time.Minute)

	if c.SeenSymbol("VNM") {
		t.Error("empty cache should not report VNM")
	}
	c.MarkSymbol("VNM")
	if !c.SeenSymbol("VNM") {
		t.Error("VNM should be present after MarkSymbol")
	}
	c.Invalidate("VNM")
	if c.SeenSymbol("VNM") {
		t.Error("VNM should be gone after Invalidate")
	}
}

func TestPresenceCache_IDs(t *testing.T) {
	c := NewPresenceCache(time.Minute)

	if c.SeenID(42) {
		t.Error("empty cache should not report id 42")
	}
	c.MarkID(42)
	if !c.SeenID(42) {
		t.Error("id 42 should be present after MarkID")
	}
}

func TestPresenceCache_Expiry(t *testing.T) {
	c := NewPresenceCache(10 * time.Millisecond)

	c.MarkSymbol("VNM")
	c.MarkID(42)
	time.Sleep(25 * time.Millisecond)

	if c.SeenSymbol("VNM") {
		t.Error("VNM should have expired")
	}
	if c.SeenID(42) {
		t.Error("id 42 should have expired")
	}
}

func TestPresenceCache_Clear(t *testing.T) {
	c := NewPresenceCache(time.Minute)

	c.MarkSymbol("VNM")
	c.MarkID(42)
	c.Clear()

	if c.SeenSymbol("VNM") || c.SeenID(42) {
		t.Error("Clear should drop all entries")
	}
}
