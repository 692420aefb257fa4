package strip

import (
	"bytes"
	"testing"
	"time"

	"periph.io/x/conn/v3/spi/spitest"

	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/show"
)

func stripConfig(n uint16, chip show.Chipset, order show.ColorOrder, bri uint8) show.PropConfig {
	return show.PropConfig{LEDCount: n, Chipset: chip, ColorOrder: order, Brightness: bri}
}

func TestWireChannelOrder(t *testing.T) {
	px := render.Pixel{R: 10, G: 20, B: 30}
	cases := []struct {
		order show.ColorOrder
		want  []byte
	}{
		{show.OrderRGB, []byte{10, 20, 30}},
		{show.OrderRBG, []byte{10, 30, 20}},
		{show.OrderGRB, []byte{20, 10, 30}},
		{show.OrderGBR, []byte{20, 30, 10}},
		{show.OrderBRG, []byte{30, 10, 20}},
		{show.OrderBGR, []byte{30, 20, 10}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		d := newDevice(&buf, stripConfig(1, show.ChipWS2812B, c.order, 255), 3, false)
		if err := d.Write([]render.Pixel{px}); err != nil {
			t.Fatalf("%v: write: %v", c.order, err)
		}
		if got := buf.Bytes(); !bytes.Equal(got, c.want) {
			t.Errorf("%v: wire bytes = %v, want %v", c.order, got, c.want)
		}
	}
}

func TestWireBrightnessCap(t *testing.T) {
	var buf bytes.Buffer
	d := newDevice(&buf, stripConfig(1, show.ChipWS2812B, show.OrderGRB, 128), 3, false)
	if err := d.Write([]render.Pixel{{R: 255, G: 100, B: 0}}); err != nil {
		t.Fatal(err)
	}
	// 255*128/255 = 128, 100*128/255 = 50, in GRB order.
	if got, expected := buf.Bytes(), []byte{50, 128, 0}; !bytes.Equal(got, expected) {
		t.Errorf("wire bytes = %v, want %v", got, expected)
	}
}

func TestWireWhiteChannel(t *testing.T) {
	var buf bytes.Buffer
	d := newDevice(&buf, stripConfig(2, show.ChipSK6812W, show.OrderGRB, 255), 4, false)
	frame := []render.Pixel{{R: 40, G: 20, W: 60}, {W: 255}}
	if err := d.Write(frame); err != nil {
		t.Fatal(err)
	}
	want := []byte{20, 40, 0, 60, 0, 0, 0, 255}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("wire bytes = %v, want %v", got, want)
	}
}

func TestWireRejectsMismatchedFrame(t *testing.T) {
	var buf bytes.Buffer
	d := newDevice(&buf, stripConfig(3, show.ChipWS2812B, show.OrderGRB, 255), 3, false)
	if err := d.Write(make([]render.Pixel, 2)); err == nil {
		t.Fatal("expected error for 2 pixels on a 3 pixel strip")
	}
	if buf.Len() != 0 {
		t.Errorf("device received %d bytes despite the mismatch", buf.Len())
	}
}

// TestSPINRZEncoding drives one red pixel through the nrzled encoder
// and checks the recorded SPI stream. Each frame byte expands to three
// NRZ symbol bytes: 0x00 -> 92 49 24, 0xFF -> DB 6D B6.
func TestSPINRZEncoding(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewSPIDevice(spitest.NewRecordRaw(&buf), 0, stripConfig(1, show.ChipWS2812B, show.OrderGRB, 255))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write([]render.Pixel{{R: 255}}); err != nil {
		t.Fatal(err)
	}
	// GRB on the wire: G=0x00, R=0xFF, B=0x00.
	want := []byte{0x92, 0x49, 0x24, 0xDB, 0x6D, 0xB6, 0x92, 0x49, 0x24}
	got := buf.Bytes()
	if len(got) < len(want) {
		t.Fatalf("recorded %d bytes, want at least %d", len(got), len(want))
	}
	if !bytes.Equal(got[:len(want)], want) {
		t.Errorf("nrz stream = %x, want prefix %x", got[:len(want)], want)
	}
}

func TestSPIDeviceAPA102(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewSPIDevice(spitest.NewRecordRaw(&buf), 0, stripConfig(4, show.ChipAPA102, show.OrderBGR, 200))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(make([]render.Pixel, 4)); err != nil {
		t.Fatal(err)
	}
	// 4 byte start frame, 4 LED frames, end frame.
	if buf.Len() < 4+4*4 {
		t.Errorf("recorded %d bytes, want at least %d", buf.Len(), 4+4*4)
	}
}

func TestSimSkipsRepeatsButAlwaysPrintsDark(t *testing.T) {
	var out bytes.Buffer
	s := NewSim(stripConfig(2, show.ChipWS2812B, show.OrderGRB, 255))
	s.out = &out
	s.throttle = time.Hour

	lit := []render.Pixel{{R: 200}, {G: 80}}
	if err := s.Write(lit); err != nil {
		t.Fatal(err)
	}
	first := out.Len()
	if first == 0 {
		t.Fatal("first frame not printed")
	}
	if err := s.Write(lit); err != nil {
		t.Fatal(err)
	}
	if out.Len() != first {
		t.Error("second frame printed inside the throttle window")
	}
	if err := s.Write(make([]render.Pixel, 2)); err != nil {
		t.Fatal(err)
	}
	if out.Len() == first {
		t.Error("cleared frame was throttled")
	}
}

func TestSimFoldsWhiteIntoDisplayColor(t *testing.T) {
	var out bytes.Buffer
	s := NewSim(stripConfig(1, show.ChipSK6812W, show.OrderGRB, 255))
	s.out = &out
	if err := s.Write([]render.Pixel{{R: 100, W: 60}}); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !bytes.Contains([]byte(got), []byte("48;2;160;60;60")) {
		t.Errorf("output %q does not show white folded into the cell color", got)
	}
}
