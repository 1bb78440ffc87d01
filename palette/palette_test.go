/*
DESCRIPTION
  palette_test.go tests the reservation and release bookkeeping of Palette.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package palette

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReserveFirstFree(t *testing.T) {
	p := New()
	r, g, b, ok := p.Reserve()
	if !ok {
		t.Fatal("expected a free color")
	}
	if r != 0xff || g != 0 || b != 0xff {
		t.Fatalf("expected magenta first, got (%x,%x,%x)", r, g, b)
	}

	r2, g2, b2, ok := p.Reserve()
	if !ok {
		t.Fatal("expected a second free color")
	}
	if r2 != 0 || g2 != 0xff || b2 != 0xff {
		t.Fatalf("expected cyan second, got (%x,%x,%x)", r2, g2, b2)
	}
}

func TestExhaustion(t *testing.T) {
	p := New()
	for i := 0; i < 3; i++ {
		if _, _, _, ok := p.Reserve(); !ok {
			t.Fatalf("expected reservation %d to succeed", i)
		}
	}
	if _, _, _, ok := p.Reserve(); ok {
		t.Fatal("expected palette exhaustion after 3 reservations")
	}
}

func TestReserveSpecificAlreadyUsed(t *testing.T) {
	p := New()
	if err := p.ReserveSpecific(0xff, 0, 0xff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.ReserveSpecific(0xff, 0, 0xff); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
}

func TestReserveSpecificUnknown(t *testing.T) {
	p := New()
	if err := p.ReserveSpecific(1, 2, 3); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestReleaseFreesForReReservation(t *testing.T) {
	p := New()
	if err := p.ReserveSpecific(0xff, 0, 0xff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Release(0xff, 0, 0xff); err != nil {
		t.Fatalf("unexpected error releasing: %v", err)
	}
	if err := p.ReserveSpecific(0xff, 0, 0xff); err != nil {
		t.Fatalf("expected re-reservation to succeed, got %v", err)
	}
}

func TestEntriesReflectsReservationsInOrder(t *testing.T) {
	p := New()
	p.Reserve()
	want := []Entry{
		{R: 0xff, G: 0x00, B: 0xff, InUse: true},
		{R: 0x00, G: 0xff, B: 0xff, InUse: false},
		{R: 0x00, G: 0x00, B: 0xff, InUse: false},
	}
	if diff := cmp.Diff(want, p.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestInUseInvariant(t *testing.T) {
	p := New()
	p.Reserve()
	p.Reserve()
	inUse := 0
	for _, e := range p.Entries() {
		if e.InUse {
			inUse++
		}
	}
	if inUse != 2 {
		t.Fatalf("expected 2 entries in use, got %d", inUse)
	}
}
