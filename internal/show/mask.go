package show

import "encoding/binary"

const (
	maskWords       = MaxProps / 32 // 7 words, 28 bytes on the wire
	legacyMaskWords = LegacyMaxProps / 32

	// MaskSize is the encoded v3 mask width in bytes.
	MaskSize = maskWords * 4
	// LegacyMaskSize is the encoded v1/v2 mask width in bytes.
	LegacyMaskSize = legacyMaskWords * 4
)

// TargetMask names the prop identities an event applies to: identity p
// occupies bit p-1, i.e. word (p-1)/32, bit (p-1)%32. The width is fixed
// by the file format, not by how many props a deployment actually uses.
type TargetMask [maskWords]uint32

// MaskOf builds a mask with the given identities set. Out-of-range
// identities are ignored.
func MaskOf(identities ...int) TargetMask {
	var m TargetMask
	for _, id := range identities {
		m.Set(id)
	}
	return m
}

// Set marks one identity. Identities outside [1, MaxProps] are ignored.
func (m *TargetMask) Set(identity int) {
	if identity < 1 || identity > MaxProps {
		return
	}
	bit := uint(identity - 1)
	m[bit/32] |= 1 << (bit % 32)
}

// Has reports whether the identity's bit is set. False outside
// [1, MaxProps].
func (m TargetMask) Has(identity int) bool {
	if identity < 1 || identity > MaxProps {
		return false
	}
	bit := uint(identity - 1)
	return m[bit/32]&(1<<(bit%32)) != 0
}

// Identities lists the set bits in ascending order.
func (m TargetMask) Identities() []int {
	var ids []int
	for id := 1; id <= MaxProps; id++ {
		if m.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// AppendTo encodes the mask as MaskSize bytes: words in index order,
// each little-endian.
func (m TargetMask) AppendTo(dst []byte) []byte {
	for _, w := range m {
		dst = binary.LittleEndian.AppendUint32(dst, w)
	}
	return dst
}

// maskFrom decodes the given number of little-endian words from b.
// Legacy masks fill only the first six words; the rest stay zero.
func maskFrom(b []byte, words int) TargetMask {
	var m TargetMask
	for i := 0; i < words; i++ {
		m[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return m
}
