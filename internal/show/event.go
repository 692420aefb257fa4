package show

import "encoding/binary"

// Kind is the effect selector byte of an event record. The values are
// part of the file format. Unknown bytes decode unchanged and render as
// OFF; they still win scheduling for their time window.
type Kind uint8

const (
	KindOff Kind = iota
	KindSolid
	KindCameraFlash
	KindStrobe
	KindRainbowChase
	KindRainbowHold
	KindChase
	KindWipe
	KindScanner
	KindMeteor
	KindBreathe
	KindHeartbeat
	KindSparkle
	KindFire
	KindEnergy
	KindGlitch
	KindAlternate

	kindCount
)

// Known reports whether the byte names a catalog effect.
func (k Kind) Known() bool { return k < kindCount }

func (k Kind) String() string {
	names := [...]string{
		"off", "solid", "camera_flash", "strobe", "rainbow_chase",
		"rainbow_hold", "chase", "wipe", "scanner", "meteor", "breathe",
		"heartbeat", "sparkle", "fire", "energy", "glitch", "alternate",
	}
	if k.Known() {
		return names[k]
	}
	return "unknown"
}

// Color is a packed RGB value, 0x00RRGGBB.
type Color uint32

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// RGB packs three channels into a Color.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

const (
	// EventRecordSize is the encoded size of one v3 event.
	EventRecordSize = 12 + 2*4 + MaskSize
	// LegacyEventRecordSize is the encoded size of one v1/v2 event.
	LegacyEventRecordSize = 12 + 4 + LegacyMaskSize
)

// Event is one scheduled instruction: a time window, an effect with its
// parameters, and the set of props it applies to.
//
// v3 record layout (48 bytes):
//
//	0  u32 start ms
//	4  u32 duration ms
//	8  u8  effect kind
//	9  u8  speed
//	10 u8  width
//	11 reserved
//	12 u32 color
//	16 u32 color2
//	20 target mask, 28 B
//
// v1/v2 records are 40 bytes: no speed/width/color2, 24-byte mask.
type Event struct {
	Start    uint32
	Duration uint32
	Kind     Kind
	Speed    uint8
	Width    uint8
	Color    Color
	Color2   Color
	Targets  TargetMask
}

// End returns the first instant after the event's window. The window is
// half-open: an event is active for t in [Start, End).
func (e Event) End() int64 { return int64(e.Start) + int64(e.Duration) }

// ActiveAt reports whether t falls inside the event's window.
func (e Event) ActiveAt(t int64) bool {
	return t >= int64(e.Start) && t < e.End()
}

func decodeEvent(b []byte) Event {
	return Event{
		Start:    binary.LittleEndian.Uint32(b),
		Duration: binary.LittleEndian.Uint32(b[4:]),
		Kind:     Kind(b[8]),
		Speed:    b[9],
		Width:    b[10],
		Color:    Color(binary.LittleEndian.Uint32(b[12:])),
		Color2:   Color(binary.LittleEndian.Uint32(b[16:])),
		Targets:  maskFrom(b[20:], maskWords),
	}
}

func decodeLegacyEvent(b []byte) Event {
	return Event{
		Start:    binary.LittleEndian.Uint32(b),
		Duration: binary.LittleEndian.Uint32(b[4:]),
		Kind:     Kind(b[8]),
		Color:    Color(binary.LittleEndian.Uint32(b[12:])),
		Targets:  maskFrom(b[16:], legacyMaskWords),
	}
}

// AppendTo encodes the event in v3 layout.
func (e Event) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, e.Start)
	dst = binary.LittleEndian.AppendUint32(dst, e.Duration)
	dst = append(dst, byte(e.Kind), e.Speed, e.Width, 0)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Color))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Color2))
	return e.Targets.AppendTo(dst)
}
