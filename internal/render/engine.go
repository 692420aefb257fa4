package render

import (
	"slices"
	"time"

	"github.com/picolume/firmware/internal/show"
)

// Engine owns one prop's frame pipeline: it evaluates the current
// selection into a working buffer, compares against the frame the strip
// is already displaying, and writes to the driver only on change. It
// also enforces the end-time cutoff on its own: once the armed event's
// end passes, one cleared frame goes out unconditionally, so a stale
// selection or a stuck comparison can never leave LEDs lit.
type Engine struct {
	drv   Driver
	white bool

	buf  []Pixel
	prev []Pixel
	sent bool // a frame reached the driver since the last resize

	end     int64 // absolute end of the armed event, 0 when none yet
	expired bool  // cutoff already fired for this end

	// Last frame timings in ms.
	Last struct {
		RenderMS float64
	}
}

// NewEngine allocates buffers for the given strip length. white selects
// the RGBW split for strips with a dedicated white channel.
func NewEngine(drv Driver, pixels int, white bool) *Engine {
	e := &Engine{drv: drv, white: white}
	e.Resize(pixels)
	return e
}

// Resize reallocates for a new strip length. The next frame transmits
// regardless of content, since the strip state is unknown after this.
func (e *Engine) Resize(pixels int) {
	if pixels < 1 {
		pixels = 1
	}
	e.buf = make([]Pixel, pixels)
	e.prev = make([]Pixel, pixels)
	e.sent = false
	e.end = 0
	e.expired = false
}

// Pixels returns the current strip length.
func (e *Engine) Pixels() int { return len(e.buf) }

// Frame evaluates the selection at the given show time and pushes the
// result when it differs from what the strip already displays. A nil
// selection renders dark. Returns whether a write happened.
func (e *Engine) Frame(ev *show.Event, showTime int64) (wrote bool, err error) {
	start := time.Now()
	defer func() {
		e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	}()

	if ev != nil {
		if end := ev.End(); end != e.end {
			e.end = end
			e.expired = false
		}
		Evaluate(ev.Kind, showTime-int64(ev.Start), EventParams(ev, e.white), e.buf)
	} else {
		fill(e.buf, Pixel{})
	}

	if e.end > 0 && showTime >= e.end && !e.expired {
		e.expired = true
		fill(e.buf, Pixel{})
		return true, e.transmit()
	}

	if !e.sent || !slices.Equal(e.buf, e.prev) {
		return true, e.transmit()
	}
	return false, nil
}

// Blackout clears the strip immediately, bypassing the dirty gate.
func (e *Engine) Blackout() error {
	fill(e.buf, Pixel{})
	return e.transmit()
}

func (e *Engine) transmit() error {
	err := e.drv.Write(e.buf)
	copy(e.prev, e.buf)
	e.sent = true
	return err
}

// Snapshot copies the last transmitted frame, for the monitor preview.
func (e *Engine) Snapshot() []Pixel {
	out := make([]Pixel, len(e.prev))
	copy(out, e.prev)
	return out
}
