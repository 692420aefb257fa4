// Package schedule picks the event a prop should be lighting at a given
// show time. Selection is a pure function of the loaded document, the
// prop's identity and the clock; it keeps no cursor, so the same time
// always yields the same answer regardless of call order or rate.
package schedule

import "github.com/picolume/firmware/internal/show"

// Scheduler selects events for one prop out of one loaded document.
// Both are fixed at construction; a reload builds a new Scheduler.
type Scheduler struct {
	events []show.Event
	word   int
	bit    uint32
	maxEnd int64
}

// New builds a scheduler for the given prop identity. The identity's
// mask position is computed once here rather than per event per tick.
// Identities outside the addressable range never match anything.
func New(doc *show.Document, identity int) *Scheduler {
	s := &Scheduler{events: doc.Events, word: -1, maxEnd: doc.MaxEndFor(identity)}
	if identity >= 1 && identity <= show.MaxProps {
		bit := uint(identity - 1)
		s.word = int(bit / 32)
		s.bit = 1 << (bit % 32)
	}
	return s
}

// Select returns the event active at show time t, or nil when the prop
// has nothing to do. Events are scanned in file order and the first
// match wins, so overlapping events resolve deterministically to the
// earliest-authored one. Windows are half-open: an event ends exactly
// at start+duration.
func (s *Scheduler) Select(t int64) *show.Event {
	if s.word < 0 {
		return nil
	}
	for i := range s.events {
		ev := &s.events[i]
		if ev.Targets[s.word]&s.bit == 0 {
			continue
		}
		if ev.ActiveAt(t) {
			return ev
		}
	}
	return nil
}

// Complete reports whether t is past the end of this prop's last event.
// Props the show never targets are complete from the first instant.
func (s *Scheduler) Complete(t int64) bool { return t > s.maxEnd }

// MaxEnd returns the end time of this prop's last event, 0 when none.
func (s *Scheduler) MaxEnd() int64 { return s.maxEnd }

// EventCount returns the number of events in the document, targeted at
// this prop or not.
func (s *Scheduler) EventCount() int { return len(s.events) }
