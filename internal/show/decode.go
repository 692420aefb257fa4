package show

import (
	"encoding/binary"
	"fmt"
)

// DecodeDocument parses a complete show file image. The header and the
// prop table must be whole; the event list may end early, in which case
// the count is clamped to the records actually present. Event counts
// above MaxEvents are clamped the same way.
func DecodeDocument(b []byte) (*Document, error) {
	h, err := decodeHeader(b)
	if err != nil {
		return nil, err
	}
	d := &Document{Header: h}

	// Events start at a version-dependent fixed offset, computed from
	// the table geometry rather than from wherever reading stopped.
	var (
		eventsAt int
		recSize  int
		decode   func([]byte) Event
	)
	switch h.Version {
	case 1:
		eventsAt = HeaderSize
		recSize = LegacyEventRecordSize
		decode = decodeLegacyEvent
	case 2:
		// One padding byte, then a bare LED count per identity.
		tableEnd := HeaderSize + 1 + 2*LegacyMaxProps
		if len(b) < tableEnd {
			return nil, fmt.Errorf("%w: LED table needs %d bytes, have %d", ErrTruncated, tableEnd, len(b))
		}
		d.LEDCounts = make([]uint16, LegacyMaxProps)
		for i := range d.LEDCounts {
			d.LEDCounts[i] = binary.LittleEndian.Uint16(b[HeaderSize+1+2*i:])
		}
		eventsAt = tableEnd
		recSize = LegacyEventRecordSize
		decode = decodeLegacyEvent
	case CurrentVersion:
		tableEnd := HeaderSize + MaxProps*PropRecordSize
		if len(b) < tableEnd {
			return nil, fmt.Errorf("%w: prop table needs %d bytes, have %d", ErrTruncated, tableEnd, len(b))
		}
		d.Table = make([]PropConfig, MaxProps)
		for i := range d.Table {
			d.Table[i] = decodePropConfig(b[HeaderSize+i*PropRecordSize:])
		}
		eventsAt = tableEnd
		recSize = EventRecordSize
		decode = decodeEvent
	}

	n := int(h.EventCount)
	if n > MaxEvents {
		n = MaxEvents
	}
	avail := 0
	if rem := len(b) - eventsAt; rem > 0 {
		avail = rem / recSize
	}
	if n > avail {
		n = avail
	}
	if n > 0 {
		d.Events = make([]Event, n)
		for i := range d.Events {
			d.Events[i] = decode(b[eventsAt+i*recSize:])
		}
	}
	return d, nil
}

// Encode serializes the document in the current format: header, full
// 224-record prop table, then events. For a current-version document,
// decoding the result yields an equal value. Legacy documents re-encode
// as v3 with their resolved per-prop records baked into the table, so a
// rewritten file lights the same way the original did.
func (d *Document) Encode() []byte {
	events := d.Events
	if len(events) > MaxEvents {
		events = events[:MaxEvents]
	}
	h := d.Header
	h.Version = CurrentVersion
	h.EventCount = uint16(len(events))

	buf := make([]byte, 0, HeaderSize+MaxProps*PropRecordSize+len(events)*EventRecordSize)
	buf = h.AppendTo(buf)
	for i := 0; i < MaxProps; i++ {
		var pc PropConfig
		switch {
		case i < len(d.Table):
			pc = d.Table[i]
		case d.Header.Version != 0 && d.Header.Version < CurrentVersion:
			pc = d.ConfigFor(i + 1)
		}
		buf = pc.AppendTo(buf)
	}
	for i := range events {
		buf = events[i].AppendTo(buf)
	}
	return buf
}
