package show

import "encoding/binary"

// Chipset identifies the LED driver IC on a prop's strip. Chipsets
// differ in signal timing and in whether a dedicated white channel
// exists; both matter to the pixel sink, not to effect evaluation.
type Chipset uint8

const (
	ChipWS2812B Chipset = iota
	ChipWS2811
	ChipWS2813
	ChipSK6812
	ChipSK6812W // four channels: RGB plus white
	ChipAPA102

	chipsetCount
)

// Valid reports whether the byte names a known chipset.
func (c Chipset) Valid() bool { return c < chipsetCount }

// White reports whether the chipset carries a dedicated white channel.
func (c Chipset) White() bool { return c == ChipSK6812W }

func (c Chipset) String() string {
	switch c {
	case ChipWS2812B:
		return "ws2812b"
	case ChipWS2811:
		return "ws2811"
	case ChipWS2813:
		return "ws2813"
	case ChipSK6812:
		return "sk6812"
	case ChipSK6812W:
		return "sk6812-rgbw"
	case ChipAPA102:
		return "apa102"
	}
	return "unknown"
}

// ColorOrder is the channel permutation a strip expects on the wire,
// independent of chipset.
type ColorOrder uint8

const (
	OrderRGB ColorOrder = iota
	OrderRBG
	OrderGRB
	OrderGBR
	OrderBRG
	OrderBGR

	orderCount
)

// Valid reports whether the byte names a known channel order.
func (o ColorOrder) Valid() bool { return o < orderCount }

func (o ColorOrder) String() string {
	switch o {
	case OrderRGB:
		return "RGB"
	case OrderRBG:
		return "RBG"
	case OrderGRB:
		return "GRB"
	case OrderGBR:
		return "GBR"
	case OrderBRG:
		return "BRG"
	case OrderBGR:
		return "BGR"
	}
	return "unknown"
}

// Permute maps logical R,G,B values into the strip's wire order.
func (o ColorOrder) Permute(r, g, b byte) (byte, byte, byte) {
	switch o {
	case OrderRBG:
		return r, b, g
	case OrderGRB:
		return g, r, b
	case OrderGBR:
		return g, b, r
	case OrderBRG:
		return b, r, g
	case OrderBGR:
		return b, g, r
	}
	return r, g, b
}

// PropRecordSize is the encoded size of one v3 PropConfig record.
const PropRecordSize = 8

// PropConfig is one prop's hardware description from the v3 table.
// Raw bytes are preserved as decoded, including unknown enum values;
// ConfigFor applies defaults at resolve time so re-encoding a record
// reproduces the original bytes.
//
// v3 record layout (8 bytes):
//
//	0  u16 LED count
//	2  u8  chipset
//	3  u8  color order
//	4  u8  brightness cap
//	5  3 reserved
type PropConfig struct {
	LEDCount   uint16
	Chipset    Chipset
	ColorOrder ColorOrder
	Brightness uint8
}

func decodePropConfig(b []byte) PropConfig {
	return PropConfig{
		LEDCount:   binary.LittleEndian.Uint16(b),
		Chipset:    Chipset(b[2]),
		ColorOrder: ColorOrder(b[3]),
		Brightness: b[4],
	}
}

// AppendTo encodes the record in v3 layout.
func (pc PropConfig) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, pc.LEDCount)
	dst = append(dst, byte(pc.Chipset), byte(pc.ColorOrder), pc.Brightness)
	return append(dst, 0, 0, 0)
}
