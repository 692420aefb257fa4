package render

import "github.com/picolume/firmware/internal/show"

// Pixel is one LED's output value. W stays 0 on three-channel hardware;
// white-capable strips get it split out from the RGB channels.
type Pixel struct{ R, G, B, W uint8 }

// Params carries everything an effect evaluation may read besides time.
// Color2, Speed and Width are meaningful only to some effects; Duration
// is the active event's length (WIPE scales its fill by it). White
// selects the RGBW split for strips with a dedicated white channel.
type Params struct {
	Color    show.Color
	Color2   show.Color
	Speed    uint8
	Width    uint8
	Duration int64
	White    bool
}

// EventParams derives evaluation parameters from a scheduled event.
func EventParams(ev *show.Event, white bool) Params {
	return Params{
		Color:    ev.Color,
		Color2:   ev.Color2,
		Speed:    ev.Speed,
		Width:    ev.Width,
		Duration: int64(ev.Duration),
		White:    white,
	}
}

// Driver abstracts the LED transport (SPI, PWM, console, capture).
type Driver interface {
	Write([]Pixel) error
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scale(c uint8, bri float64) uint8 {
	return uint8(float64(c)*clamp01(bri) + 0.5)
}

func fill(dst []Pixel, px Pixel) {
	for i := range dst {
		dst[i] = px
	}
}

func colorPixel(c show.Color) Pixel {
	return Pixel{R: c.R(), G: c.G(), B: c.B()}
}

func dimmed(c show.Color, bri float64) Pixel {
	return Pixel{R: scale(c.R(), bri), G: scale(c.G(), bri), B: scale(c.B(), bri)}
}

// wheel maps a byte position to a color around the hue circle, the
// classic three-segment approximation used by addressable-LED demos.
func wheel(pos uint8) Pixel {
	switch {
	case pos < 85:
		return Pixel{R: 255 - pos*3, G: pos * 3}
	case pos < 170:
		pos -= 85
		return Pixel{G: 255 - pos*3, B: pos * 3}
	default:
		pos -= 170
		return Pixel{R: pos * 3, B: 255 - pos*3}
	}
}
