/*
DESCRIPTION
  led.go defines the controller-transport collaborator: the consumer-side
  interface the tracker uses to command a physical controller's LED
  sphere to a given color. There is no feedback path; the transport is
  write-only, matching the original tracker's set-then-flush LED API.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package led defines the controller-transport collaborator used to
// command a tracked controller's LED sphere.
package led

// Transport sets a controller's LED color and flushes it to the device.
// Implementations are consumer-side only: there is no read-back of the
// commanded color.
type Transport interface {
	// SetRGB commands the LED to (r, g, b) and flushes the change.
	SetRGB(r, g, b byte) error
}

// Fake is a Transport that records the most recently commanded color, for
// use in tests and in the quick-verify path where the tracker re-asserts
// the LED color between frame pumps.
type Fake struct {
	R, G, B byte
	Calls   int
}

// SetRGB implements Transport.
func (f *Fake) SetRGB(r, g, b byte) error {
	f.R, f.G, f.B = r, g, b
	f.Calls++
	return nil
}
