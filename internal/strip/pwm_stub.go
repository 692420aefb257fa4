//go:build !linux || !cgo

package strip

import (
	"fmt"

	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/show"
)

// PWM is unavailable without the rpi_ws281x library.
type PWM struct{}

func NewPWM(gpio int, pc show.PropConfig) (*PWM, error) {
	return nil, fmt.Errorf("pwm driver requires linux and cgo")
}

func (p *PWM) Write(frame []render.Pixel) error {
	return fmt.Errorf("pwm driver unavailable")
}

func (p *PWM) Close() error { return nil }
