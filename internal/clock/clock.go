// Package clock keeps a prop's copy of the transmitter's show clock.
// Timecode packets set the clock authoritatively; between packets the
// clock free-runs on measured wall-clock deltas while playing, so a
// prop that stops hearing the transmitter keeps its show moving instead
// of freezing mid-effect.
package clock

import "time"

// Sync is the local show clock. Not safe for concurrent use; the
// control loop is its only caller.
type Sync struct {
	timeMS  int64
	playing bool

	lastPacket  time.Time
	everSynced  bool
	lastCounter uint32
	lost        uint64
}

func New() *Sync { return &Sync{} }

// Apply takes one timecode packet as the new truth. No smoothing, no
// drift compensation: the packet's time replaces the local clock even
// when that means jumping backward, because the transmitter may have
// been paused, restarted or seeked and is always right.
func (s *Sync) Apply(timeMS uint32, play bool, counter uint32, now time.Time) {
	if s.everSynced && counter > s.lastCounter+1 {
		s.lost += uint64(counter - s.lastCounter - 1)
	}
	s.timeMS = int64(timeMS)
	s.playing = play
	s.lastCounter = counter
	s.lastPacket = now
	s.everSynced = true
}

// Advance moves the clock forward by a measured wall-clock delta. Only
// meaningful on iterations where no packet arrived; the control loop
// calls exactly one of Apply or Advance per tick. Paused time holds
// still.
func (s *Sync) Advance(dt time.Duration) {
	if s.playing && dt > 0 {
		s.timeMS += dt.Milliseconds()
	}
}

// Now returns the current show time in ms.
func (s *Sync) Now() int64 { return s.timeMS }

// Playing reports whether the transmitter last said the show runs.
func (s *Sync) Playing() bool { return s.playing }

// Synced reports whether any packet was ever applied.
func (s *Sync) Synced() bool { return s.everSynced }

// SignalLost reports that no packet arrived within timeout. True before
// the first packet as well. Losing signal does not stop the clock; it
// only changes what the status surface shows.
func (s *Sync) SignalLost(timeout time.Duration, now time.Time) bool {
	if !s.everSynced {
		return true
	}
	return now.Sub(s.lastPacket) > timeout
}

// Lost returns how many packets the counter sequence skipped over.
// Diagnostics only; gaps have no effect on the clock itself.
func (s *Sync) Lost() uint64 { return s.lost }
