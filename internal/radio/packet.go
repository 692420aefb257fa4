// Package radio moves timecode packets between the transmitter and the
// props. The link carries plaintext datagrams; keying or encryption, if
// a deployment wants it, lives in the radio hardware below this layer.
package radio

import (
	"encoding/binary"
	"fmt"
)

// PacketSize is the fixed encoded length of a timecode packet.
const PacketSize = 12

// DefaultGroupAddr is the multicast group the transmitter and props
// share out of the box. The group octets spell L.U.M.
const DefaultGroupAddr = "239.76.85.77:19541"

// ErrShortPacket is returned for buffers below PacketSize.
var ErrShortPacket = fmt.Errorf("radio: packet shorter than %d bytes", PacketSize)

// Packet is one timecode broadcast.
//
// Layout (12 bytes, little-endian):
//
//	0  u32 counter
//	4  u32 show time ms
//	8  u8  play flag
//	9  u8  hop count
//	10 u8  source id
//	11 reserved
//
// Hop and Source are mesh-repeater leftovers: carried and surfaced for
// diagnostics, never interpreted here.
type Packet struct {
	Counter uint32
	TimeMS  uint32
	Play    bool
	Hop     uint8
	Source  uint8
}

// DecodePacket parses one datagram. Bytes beyond PacketSize are
// ignored. Any 12-byte input decodes without error; there is nothing a
// malformed peer can put in the fixed fields that breaks parsing.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < PacketSize {
		return Packet{}, ErrShortPacket
	}
	return Packet{
		Counter: binary.LittleEndian.Uint32(b),
		TimeMS:  binary.LittleEndian.Uint32(b[4:]),
		Play:    b[8] != 0,
		Hop:     b[9],
		Source:  b[10],
	}, nil
}

// AppendTo encodes the packet.
func (p Packet) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, p.Counter)
	dst = binary.LittleEndian.AppendUint32(dst, p.TimeMS)
	play := byte(0)
	if p.Play {
		play = 1
	}
	return append(dst, play, p.Hop, p.Source, 0)
}
