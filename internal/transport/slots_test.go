package transport

import (
	"fmt"
	"testing"
)

func TestPreviewSlotsAreBounded(t *testing.T) {
	slots := newPreviewSlots(2)

	a := slots.get("a")
	if slots.get("a") != a {
		t.Fatal("same slot must return the same tracker")
	}
	slots.get("b")
	slots.get("c") // evicts "a", the least recently used

	if n := slots.len(); n != 2 {
		t.Errorf("len = %d, want 2", n)
	}
	if slots.get("a") == a {
		t.Error("evicted slot must start a fresh tracker")
	}
}

func TestPreviewSlotsManyClients(t *testing.T) {
	slots := newPreviewSlots(maxPreviewSlots)
	for i := 0; i < maxPreviewSlots*3; i++ {
		slots.get(fmt.Sprintf("slot-%d", i))
	}
	if n := slots.len(); n != maxPreviewSlots {
		t.Errorf("len = %d, want %d", n, maxPreviewSlots)
	}
}
