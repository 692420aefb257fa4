// Package status names the receiver's user-visible states and carries
// diagnostics to whatever surface can show them: the log, the monitor
// websocket, a future front-panel indicator.
package status

// State is the coarse receiver state, refreshed about once a second.
type State string

const (
	NoShow       State = "no_show"
	NoSignal     State = "no_signal"
	Paused       State = "paused"
	Playing      State = "playing"
	ShowComplete State = "show_complete"
	RadioFailed  State = "radio_failed"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Diagnostic is one reportable condition. Code is stable and
// dot-scoped ("SHOW.LOADED", "RADIO.SIGNAL_LOST"); Summary is for
// humans.
type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Code     string         `json:"code"`
	Summary  string         `json:"summary"`
	Detail   string         `json:"detail,omitempty"`
	Evidence map[string]any `json:"evidence,omitempty"`
}

// Reporter receives state transitions and diagnostics. Implementations
// must not block; the control loop calls them inline.
type Reporter interface {
	StateChanged(s State)
	Report(d Diagnostic)
}

// Multi fans out to several reporters.
type Multi []Reporter

func (m Multi) StateChanged(s State) {
	for _, r := range m {
		r.StateChanged(s)
	}
}

func (m Multi) Report(d Diagnostic) {
	for _, r := range m {
		r.Report(d)
	}
}
