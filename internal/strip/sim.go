package strip

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/show"
)

// simMaxCells caps the printed width so long strips stay on one line.
const simMaxCells = 64

// Sim prints frames to the terminal as 24-bit background color cells,
// overwriting one line in place. It stands in for hardware during
// bench bring-up and when no strip is attached.
type Sim struct {
	pc       show.PropConfig
	out      io.Writer
	throttle time.Duration
	lastEmit time.Time
}

func NewSim(pc show.PropConfig) *Sim {
	return &Sim{pc: pc, out: os.Stdout, throttle: 50 * time.Millisecond}
}

func (s *Sim) Write(frame []render.Pixel) error {
	// Cleared frames always print; a stale lit preview after cutoff
	// would lie about what the hardware shows.
	now := time.Now()
	if !dark(frame) && now.Sub(s.lastEmit) < s.throttle {
		return nil
	}
	s.lastEmit = now

	var b strings.Builder
	b.WriteByte('\r')
	for i, px := range frame {
		if i == simMaxCells {
			b.WriteByte('+')
			break
		}
		r := saturate(capped(px.R, s.pc.Brightness), capped(px.W, s.pc.Brightness))
		g := saturate(capped(px.G, s.pc.Brightness), capped(px.W, s.pc.Brightness))
		bl := saturate(capped(px.B, s.pc.Brightness), capped(px.W, s.pc.Brightness))
		fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm ", r, g, bl)
	}
	b.WriteString("\x1b[0m")
	_, err := io.WriteString(s.out, b.String())
	return err
}

func (s *Sim) Close() error {
	_, err := fmt.Fprintln(s.out)
	return err
}

func dark(frame []render.Pixel) bool {
	for _, px := range frame {
		if px != (render.Pixel{}) {
			return false
		}
	}
	return true
}

// saturate folds the white channel back into a display color.
func saturate(c, w uint8) uint8 {
	v := int(c) + int(w)
	if v > 255 {
		return 255
	}
	return uint8(v)
}
