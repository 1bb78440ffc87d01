/*
DESCRIPTION
  palette.go maintains the small set of candidate LED emission colors a
  tracker can hand out to controllers, and their in-use state.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package palette maintains the small set of candidate tracking colors a
// Tracker can assign to controllers, and tracks which are currently in use.
package palette

import "errors"

// ErrAlreadyUsed is returned by ReserveSpecific when the requested color
// is already assigned to another controller.
var ErrAlreadyUsed = errors.New("palette: color already in use")

// ErrUnknown is returned by ReserveSpecific and Release when the given
// RGB triple is not one of the palette's entries.
var ErrUnknown = errors.New("palette: unknown color")

// Entry is a single candidate emission color and its in-use flag.
type Entry struct {
	R, G, B byte
	InUse   bool
}

// Palette is an ordered sequence of candidate tracking colors. It is not
// safe for concurrent use; callers (the tracker facade) serialize access.
type Palette struct {
	entries []Entry
}

// Default hue-separated colors, chosen the way the original tracking core
// prepares its available colors: magenta first (best tracking contrast),
// then cyan, then blue.
var defaultColors = []Entry{
	{R: 0xff, G: 0x00, B: 0xff}, // magenta
	{R: 0x00, G: 0xff, B: 0xff}, // cyan
	{R: 0x00, G: 0x00, B: 0xff}, // blue
}

// New returns a Palette seeded with the default hue-separated colors.
func New() *Palette {
	entries := make([]Entry, len(defaultColors))
	copy(entries, defaultColors)
	return &Palette{entries: entries}
}

// Reserve returns the first not-in-use color and marks it used. It
// returns false if every color is currently in use.
func (p *Palette) Reserve() (r, g, b byte, ok bool) {
	for i := range p.entries {
		if !p.entries[i].InUse {
			p.entries[i].InUse = true
			e := p.entries[i]
			return e.R, e.G, e.B, true
		}
	}
	return 0, 0, 0, false
}

// ReserveSpecific marks the entry matching (r, g, b) as used. It returns
// ErrUnknown if no entry matches, and ErrAlreadyUsed if the entry is
// already reserved.
func (p *Palette) ReserveSpecific(r, g, b byte) error {
	for i := range p.entries {
		if p.entries[i].R == r && p.entries[i].G == g && p.entries[i].B == b {
			if p.entries[i].InUse {
				return ErrAlreadyUsed
			}
			p.entries[i].InUse = true
			return nil
		}
	}
	return ErrUnknown
}

// Release clears the in-use flag of the entry matching (r, g, b). It
// returns ErrUnknown if no entry matches; releasing an entry that is
// already free leaves it free and returns nil.
func (p *Palette) Release(r, g, b byte) error {
	for i := range p.entries {
		if p.entries[i].R == r && p.entries[i].G == g && p.entries[i].B == b {
			p.entries[i].InUse = false
			return nil
		}
	}
	return ErrUnknown
}

// Entries returns a copy of the palette's entries, in order.
func (p *Palette) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}
