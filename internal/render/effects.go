package render

import (
	"math"
	"math/rand"

	"github.com/picolume/firmware/internal/show"
)

// Effect timing constants, milliseconds. The base periods are the
// speed-byte-zero behavior of each cycling effect.
const (
	flashCycleMS  = 500
	flashLitMS    = 50
	strobeHalfMS  = 33
	rainbowBaseMS = 2000
	chaseBaseMS   = 1500
	scannerBaseMS = 2000
	meteorBaseMS  = 2500
	breatheBaseMS = 4000
	heartbeatMS   = 1000
	sparkleTickMS = 50
	fireTickMS    = 80
	glitchTickMS  = 50
	energyPrimeMS = 1700
	energySecMS   = 1300
)

// Evaluate computes the full frame for one effect at one instant of
// event-local time. It is total: every kind byte, including undefined
// ones, fills every pixel of dst. Undefined kinds render dark. Negative
// elapsed times clamp to the event start.
func Evaluate(kind show.Kind, elapsed int64, p Params, dst []Pixel) {
	if elapsed < 0 {
		elapsed = 0
	}
	switch kind {
	case show.KindSolid:
		fill(dst, colorPixel(p.Color))
	case show.KindCameraFlash:
		evalCameraFlash(elapsed, dst)
	case show.KindStrobe:
		evalStrobe(elapsed, p, dst)
	case show.KindRainbowChase:
		evalRainbowChase(elapsed, p, dst)
	case show.KindRainbowHold:
		evalRainbowHold(dst)
	case show.KindChase:
		evalChase(elapsed, p, dst)
	case show.KindWipe:
		evalWipe(elapsed, p, dst)
	case show.KindScanner:
		evalScanner(elapsed, p, dst)
	case show.KindMeteor:
		evalMeteor(elapsed, p, dst)
	case show.KindBreathe:
		evalBreathe(elapsed, p, dst)
	case show.KindHeartbeat:
		evalHeartbeat(elapsed, p, dst)
	case show.KindSparkle:
		evalSparkle(elapsed, p, dst)
	case show.KindFire:
		evalFire(elapsed, dst)
	case show.KindEnergy:
		evalEnergy(elapsed, p, dst)
	case show.KindGlitch:
		evalGlitch(elapsed, p, dst)
	case show.KindAlternate:
		evalAlternate(p, dst)
	default: // KindOff and anything undefined
		fill(dst, Pixel{})
	}
	if p.White {
		extractWhite(dst)
	}
}

// periodMS scales a base cycle length by the speed byte. Zero keeps the
// base; 50 is unity; larger values shorten the cycle.
func periodMS(base int64, speed uint8) int64 {
	if speed == 0 {
		return base
	}
	p := base * 50 / int64(speed)
	if p < 1 {
		p = 1
	}
	return p
}

// rng is the source for the randomized effects: one stream per tick of
// elapsed time, so repeated evaluations at the same instant flicker
// identically and a replayed show looks the same.
func rng(elapsed, tickMS int64) *rand.Rand {
	return rand.New(rand.NewSource(elapsed / tickMS))
}

func evalCameraFlash(elapsed int64, dst []Pixel) {
	if elapsed%flashCycleMS < flashLitMS {
		fill(dst, Pixel{R: 255, G: 255, B: 255})
	} else {
		fill(dst, Pixel{})
	}
}

func evalStrobe(elapsed int64, p Params, dst []Pixel) {
	if (elapsed/strobeHalfMS)%2 == 0 {
		fill(dst, colorPixel(p.Color))
	} else {
		fill(dst, Pixel{})
	}
}

func evalRainbowChase(elapsed int64, p Params, dst []Pixel) {
	n := len(dst)
	if n == 0 {
		return
	}
	period := periodMS(rainbowBaseMS, p.Speed)
	offset := 256 * (elapsed % period) / period
	for i := range dst {
		dst[i] = wheel(uint8(i*256/n + int(offset)))
	}
}

func evalRainbowHold(dst []Pixel) {
	n := len(dst)
	for i := range dst {
		dst[i] = wheel(uint8(i * 256 / n))
	}
}

func evalChase(elapsed int64, p Params, dst []Pixel) {
	n := len(dst)
	if n == 0 {
		return
	}
	band := n * int(p.Width) / 255
	if p.Width == 0 {
		band = n / 10
	}
	if band < 1 {
		band = 1
	}
	period := periodMS(chaseBaseMS, p.Speed)
	head := int(int64(n) * (elapsed % period) / period)
	px := colorPixel(p.Color)
	for i := range dst {
		if i >= head && i < head+band {
			dst[i] = px
		} else {
			dst[i] = Pixel{}
		}
	}
}

func evalWipe(elapsed int64, p Params, dst []Pixel) {
	n := len(dst)
	lit := n
	if p.Duration > 0 {
		lit = int(float64(n) * clamp01(float64(elapsed)/float64(p.Duration)))
	}
	px := colorPixel(p.Color)
	for i := range dst {
		if i < lit {
			dst[i] = px
		} else {
			dst[i] = Pixel{}
		}
	}
}

func evalScanner(elapsed int64, p Params, dst []Pixel) {
	n := len(dst)
	if n == 0 {
		return
	}
	limit := float64(n) * float64(p.Width) / 510
	if p.Width == 0 {
		limit = float64(n) / 8
		if limit < 2 {
			limit = 2
		}
	}
	if limit < 1 {
		limit = 1
	}
	period := periodMS(scannerBaseMS, p.Speed)
	phase := 2 * math.Pi * float64(elapsed%period) / float64(period)
	center := (math.Sin(phase) + 1) / 2 * float64(n-1)
	for i := range dst {
		d := math.Abs(float64(i) - center)
		if d < limit {
			dst[i] = dimmed(p.Color, 1-d/limit)
		} else {
			dst[i] = Pixel{}
		}
	}
}

func evalMeteor(elapsed int64, p Params, dst []Pixel) {
	n := len(dst)
	if n == 0 {
		return
	}
	tail := float64(n) * float64(p.Width) / 255
	if p.Width == 0 {
		tail = float64(n) / 4
		if tail < 2 {
			tail = 2
		}
	}
	if tail < 1 {
		tail = 1
	}
	period := periodMS(meteorBaseMS, p.Speed)
	head := float64(n) * float64(elapsed%period) / float64(period)
	for i := range dst {
		d := head - float64(i)
		if d < 0 {
			dst[i] = Pixel{}
			continue
		}
		dst[i] = dimmed(p.Color, math.Exp(-3*d/tail))
	}
}

func evalBreathe(elapsed int64, p Params, dst []Pixel) {
	period := periodMS(breatheBaseMS, p.Speed)
	bri := (1 - math.Cos(2*math.Pi*float64(elapsed%period)/float64(period))) / 2
	fill(dst, dimmed(p.Color, bri))
}

func evalHeartbeat(elapsed int64, p Params, dst []Pixel) {
	t := elapsed % heartbeatMS
	var bri float64
	switch {
	case t < 150:
		bri = math.Sin(math.Pi * float64(t) / 150)
	case t > 250 && t < 450:
		bri = 0.6 * math.Sin(math.Pi*float64(t-250)/200)
	}
	fill(dst, dimmed(p.Color, bri))
}

func evalSparkle(elapsed int64, p Params, dst []Pixel) {
	r := rng(elapsed, sparkleTickMS)
	base := dimmed(p.Color, 0.2)
	for i := range dst {
		if r.Float64() < 0.10 {
			dst[i] = Pixel{R: 255, G: 255, B: 255}
		} else {
			dst[i] = base
		}
	}
}

func evalFire(elapsed int64, dst []Pixel) {
	embers := [3]Pixel{
		{R: 255},          // red
		{R: 255, G: 0x45}, // orange
		{R: 255, G: 255},  // yellow
	}
	r := rng(elapsed, fireTickMS)
	for i := range dst {
		dst[i] = embers[r.Intn(len(embers))]
	}
}

func evalEnergy(elapsed int64, p Params, dst []Pixel) {
	te := float64(elapsed)
	for i := range dst {
		fi := float64(i)
		w := (math.Sin(0.3*fi+2*math.Pi*te/energyPrimeMS) +
			math.Sin(0.5*fi-2*math.Pi*te/energySecMS) + 2) / 4
		dst[i] = lerpColor(p.Color, p.Color2, w)
	}
}

func evalGlitch(elapsed int64, p Params, dst []Pixel) {
	c := p.Color
	if rng(elapsed, glitchTickMS).Float64() >= 0.7 {
		c = p.Color2
	}
	fill(dst, colorPixel(c))
}

func evalAlternate(p Params, dst []Pixel) {
	a, b := colorPixel(p.Color), colorPixel(p.Color2)
	for i := range dst {
		if i%2 == 0 {
			dst[i] = a
		} else {
			dst[i] = b
		}
	}
}

func lerpColor(a, b show.Color, w float64) Pixel {
	w = clamp01(w)
	return Pixel{
		R: uint8(float64(a.R())*(1-w) + float64(b.R())*w + 0.5),
		G: uint8(float64(a.G())*(1-w) + float64(b.G())*w + 0.5),
		B: uint8(float64(a.B())*(1-w) + float64(b.B())*w + 0.5),
	}
}

// extractWhite converts RGB pixels to RGBW: the white channel takes the
// common component, a color-temperature-neutral split.
func extractWhite(dst []Pixel) {
	for i := range dst {
		w := dst[i].R
		if dst[i].G < w {
			w = dst[i].G
		}
		if dst[i].B < w {
			w = dst[i].B
		}
		dst[i].R -= w
		dst[i].G -= w
		dst[i].B -= w
		dst[i].W = w
	}
}
