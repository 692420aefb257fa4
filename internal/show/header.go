package show

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header is the fixed 16-byte block at the start of every show file.
//
// Layout, all versions:
//
//	0  magic "LUME"
//	4  u16 version
//	6  u16 event count
//	8  u16 global LED count (v1 only; reserved in v2/v3)
//	10 6 reserved
type Header struct {
	Version    uint16
	EventCount uint16

	// GlobalLEDCount is the single strip length a v1 file declares for
	// every prop. Later versions carry per-prop counts and leave this 0.
	GlobalLEDCount uint16
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) >= len(Magic) && !bytes.Equal(b[:len(Magic)], Magic[:]) {
		return Header{}, ErrBadMagic
	}
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d byte header", ErrTruncated, len(b))
	}
	h := Header{
		Version:        binary.LittleEndian.Uint16(b[4:]),
		EventCount:     binary.LittleEndian.Uint16(b[6:]),
		GlobalLEDCount: binary.LittleEndian.Uint16(b[8:]),
	}
	if h.Version < 1 || h.Version > CurrentVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return h, nil
}

// AppendTo encodes the header. Only the current version is ever written;
// the global LED count field is emitted as-is so decoded v1 headers
// survive a byte-level round trip.
func (h Header) AppendTo(dst []byte) []byte {
	dst = append(dst, Magic[:]...)
	dst = binary.LittleEndian.AppendUint16(dst, h.Version)
	dst = binary.LittleEndian.AppendUint16(dst, h.EventCount)
	dst = binary.LittleEndian.AppendUint16(dst, h.GlobalLEDCount)
	return append(dst, 0, 0, 0, 0, 0, 0)
}
