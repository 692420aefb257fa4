// Package strip adapts rendered frames to LED hardware. Effects know
// nothing about chipsets; everything hardware-specific lives here:
// channel permutation, the per-prop brightness cap, the white channel
// on four-channel strips, and the transport (SPI, PWM, console).
//
// Drivers are owned by the control loop and are not safe for
// concurrent use.
package strip

import (
	"fmt"
	"io"

	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/show"
)

// Device pushes frames through a byte-oriented LED device such as the
// nrzled SPI encoder, or a recording port in tests. The device encodes
// bytes onto the wire verbatim, so the bytes handed to it are already
// in the strip's channel order with the brightness cap applied.
type Device struct {
	w        io.Writer
	closer   io.Closer
	pc       show.PropConfig
	channels int
	raw      bool // device formats its own wire protocol (apa102)
	wire     []byte
}

func newDevice(w io.Writer, pc show.PropConfig, channels int, raw bool) *Device {
	return &Device{
		w:        w,
		pc:       pc,
		channels: channels,
		raw:      raw,
		wire:     make([]byte, 0, int(pc.LEDCount)*channels),
	}
}

// Write transmits one frame. The frame length must match the strip.
func (d *Device) Write(frame []render.Pixel) error {
	if len(frame) != int(d.pc.LEDCount) {
		return fmt.Errorf("strip: frame has %d pixels, strip has %d", len(frame), d.pc.LEDCount)
	}
	b := d.wire[:0]
	for _, px := range frame {
		if d.raw {
			// apa102 applies ordering and intensity itself.
			b = append(b, px.R, px.G, px.B)
			continue
		}
		r := capped(px.R, d.pc.Brightness)
		g := capped(px.G, d.pc.Brightness)
		bl := capped(px.B, d.pc.Brightness)
		x, y, z := d.pc.ColorOrder.Permute(r, g, bl)
		b = append(b, x, y, z)
		if d.channels == 4 {
			b = append(b, capped(px.W, d.pc.Brightness))
		}
	}
	d.wire = b
	_, err := d.w.Write(b)
	return err
}

// Close releases the underlying port, when the device owns one.
func (d *Device) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

func capped(v, limit uint8) uint8 {
	return uint8(uint16(v) * uint16(limit) / 255)
}
