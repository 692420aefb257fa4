//go:build linux && cgo

package strip

/*
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/show"
)

// PWM drives NRZ strips from the SoC PWM peripheral through the
// rpi_ws281x library. Channel ordering and the brightness cap are
// delegated to the library via strip_type and channel brightness.
type PWM struct {
	count int

	dev *C.ws2811_t
	buf unsafe.Pointer
}

func NewPWM(gpio int, pc show.PropConfig) (*PWM, error) {
	p := &PWM{count: int(pc.LEDCount)}

	// Allocate ws2811_t
	p.dev = (*C.ws2811_t)(C.calloc(1, C.size_t(unsafe.Sizeof(*p.dev))))
	if p.dev == nil {
		return nil, fmt.Errorf("calloc ws2811_t failed")
	}

	p.dev.freq = 800000
	if pc.Chipset == show.ChipWS2811 {
		p.dev.freq = 400000
	}
	p.dev.dmanum = 10
	// Channel 0
	ch := &p.dev.channel[0]
	ch.gpionum = C.int(gpio)
	ch.count = C.int(p.count)
	ch.invert = 0
	ch.strip_type = stripType(pc)
	ch.brightness = C.uint8_t(pc.Brightness)

	if st := C.ws2811_init(p.dev); st != C.WS2811_SUCCESS {
		C.free(unsafe.Pointer(p.dev))
		p.dev = nil
		return nil, fmt.Errorf("ws2811_init failed: %d", int(st))
	}

	// Grab pointer to the LED buffer the library renders from.
	p.buf = unsafe.Pointer(ch.leds)
	return p, nil
}

func stripType(pc show.PropConfig) C.int {
	if pc.Chipset.White() {
		return C.SK6812_STRIP_GRBW
	}
	switch pc.ColorOrder {
	case show.OrderRGB:
		return C.WS2811_STRIP_RGB
	case show.OrderRBG:
		return C.WS2811_STRIP_RBG
	case show.OrderGBR:
		return C.WS2811_STRIP_GBR
	case show.OrderBRG:
		return C.WS2811_STRIP_BRG
	case show.OrderBGR:
		return C.WS2811_STRIP_BGR
	default:
		return C.WS2811_STRIP_GRB
	}
}

func (p *PWM) Write(frame []render.Pixel) error {
	if p.dev == nil {
		return fmt.Errorf("pwm not initialized")
	}
	// Pack as 0xWWRRGGBB; strip_type handles channel ordering on the wire.
	leds := (*[1 << 26]C.ws2811_led_t)(p.buf)[:p.count:p.count]
	for i := 0; i < p.count && i < len(frame); i++ {
		px := frame[i]
		val := uint32(px.W)<<24 | uint32(px.R)<<16 | uint32(px.G)<<8 | uint32(px.B)
		leds[i] = C.ws2811_led_t(val)
	}
	if st := C.ws2811_render(p.dev); st != C.WS2811_SUCCESS {
		return fmt.Errorf("ws2811_render failed: %d", int(st))
	}
	return nil
}

func (p *PWM) Close() error {
	if p.dev != nil {
		C.ws2811_fini(p.dev)
		C.free(unsafe.Pointer(p.dev))
		p.dev = nil
	}
	return nil
}
