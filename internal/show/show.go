// Package show decodes PicoLume binary show files: a fixed header, a
// per-prop hardware table, and an ordered list of timed lighting events.
// All multi-byte fields are little-endian. Decoding works on plain byte
// slices with explicit offsets; nothing here depends on struct layout.
package show

import "errors"

// Magic is the 4-byte signature at the start of every show file.
var Magic = [4]byte{'L', 'U', 'M', 'E'}

const (
	// CurrentVersion is the newest supported file format.
	CurrentVersion = 3

	// HeaderSize is the fixed header length for every format version.
	HeaderSize = 16

	// MaxProps is the highest prop identity the current format can
	// address; event masks carry one bit per identity.
	MaxProps = 224

	// LegacyMaxProps is the identity ceiling of the v1/v2 formats.
	LegacyMaxProps = 192

	// MaxEvents caps how many events a single load keeps. Files may
	// declare more; the excess is ignored, not an error.
	MaxEvents = 256

	// DefaultLEDCount sizes the strip when the file carries no usable
	// count for this prop.
	DefaultLEDCount = 50
)

var (
	// ErrBadMagic means the file does not start with the show signature.
	ErrBadMagic = errors.New("show: bad magic")
	// ErrUnsupportedVersion means the header version is not 1, 2 or 3.
	ErrUnsupportedVersion = errors.New("show: unsupported version")
	// ErrTruncated means the header or the prop table ended early.
	// A short event list is not an error; the count is clamped instead.
	ErrTruncated = errors.New("show: truncated file")
)

// Document is one fully decoded show file. It is immutable after
// decoding; a reload builds a fresh Document and swaps it wholesale.
type Document struct {
	Header Header

	// Table holds the v3 per-prop hardware records, one per possible
	// identity. Nil for v1/v2 files.
	Table []PropConfig

	// LEDCounts holds the v2 per-prop LED counts. Nil otherwise.
	LEDCounts []uint16

	// Events in file order. Order is significant: the scheduler picks
	// the first matching event, so earlier entries win overlaps.
	Events []Event
}

// Empty returns a document with no events, used when no show file could
// be loaded. The prop then resolves default hardware and renders OFF.
func Empty() *Document {
	return &Document{Header: Header{Version: CurrentVersion}}
}

// ConfigFor resolves the hardware record for one prop identity. Formats
// that predate per-prop hardware data resolve to the default record
// (WS2812B, GRB, full brightness). Never fails: out-of-range identities
// and unknown enum bytes also resolve to defaults.
func (d *Document) ConfigFor(identity int) PropConfig {
	pc := PropConfig{
		LEDCount:   DefaultLEDCount,
		Chipset:    ChipWS2812B,
		ColorOrder: OrderGRB,
		Brightness: 255,
	}
	switch d.Header.Version {
	case 1:
		if d.Header.GlobalLEDCount > 0 {
			pc.LEDCount = d.Header.GlobalLEDCount
		}
	case 2:
		if identity >= 1 && identity <= len(d.LEDCounts) {
			if n := d.LEDCounts[identity-1]; n > 0 {
				pc.LEDCount = n
			}
		}
	case CurrentVersion:
		if identity < 1 || identity > len(d.Table) {
			break
		}
		rec := d.Table[identity-1]
		if rec.LEDCount > 0 {
			pc.LEDCount = rec.LEDCount
		}
		if rec.Chipset.Valid() {
			pc.Chipset = rec.Chipset
		}
		if rec.ColorOrder.Valid() {
			pc.ColorOrder = rec.ColorOrder
		}
		pc.Brightness = rec.Brightness
	}
	return pc
}

// MaxEndFor returns the latest end time (ms) among events targeting the
// given prop, or 0 when none do. Events aimed at other props do not
// count: a show is "complete" for a prop once its own last event ends.
func (d *Document) MaxEndFor(identity int) int64 {
	var max int64
	for i := range d.Events {
		if !d.Events[i].Targets.Has(identity) {
			continue
		}
		if end := d.Events[i].End(); end > max {
			max = end
		}
	}
	return max
}
