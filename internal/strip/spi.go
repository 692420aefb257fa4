package strip

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
	"periph.io/x/devices/v3/nrzled"

	"github.com/picolume/firmware/internal/show"
)

// OpenSPI opens the named SPI port ("" picks the first available) and
// attaches the prop's strip to it. The returned device owns the port.
// speedHz overrides the SPI clock; 0 derives it from the chipset.
func OpenSPI(dev string, speedHz int, pc show.PropConfig) (*Device, error) {
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", dev, err)
	}
	d, err := NewSPIDevice(port, speedHz, pc)
	if err != nil {
		port.Close()
		return nil, err
	}
	d.closer = port
	return d, nil
}

// NewSPIDevice attaches a strip to an already-open port. Split from
// OpenSPI so tests can hand in a recording port. APA102 negotiates its
// own clock and ignores speedHz.
func NewSPIDevice(p spi.Port, speedHz int, pc show.PropConfig) (*Device, error) {
	n := int(pc.LEDCount)
	if pc.Chipset == show.ChipAPA102 {
		dev, err := apa102.New(p, &apa102.Opts{
			NumPixels:   n,
			Intensity:   pc.Brightness,
			Temperature: apa102.NeutralTemp,
		})
		if err != nil {
			return nil, fmt.Errorf("apa102: %w", err)
		}
		return newDevice(dev, pc, 3, true), nil
	}

	channels := 3
	if pc.Chipset.White() {
		channels = 4
	}
	// NRZ data rate in kHz. The SPI clock runs at 3x so each NRZ bit
	// becomes a 3-bit symbol, plus headroom for the reset latch.
	rate := 800
	if pc.Chipset == show.ChipWS2811 {
		rate = 400
	}
	freq := physic.Frequency(rate*3+100) * physic.KiloHertz
	if speedHz > 0 {
		freq = physic.Frequency(speedHz) * physic.Hertz
	}
	dev, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: n,
		Channels:  channels,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return newDevice(dev, pc, channels, false), nil
}
