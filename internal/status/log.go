package status

import "github.com/rs/zerolog/log"

// LogReporter mirrors states and diagnostics into the global logger.
type LogReporter struct{}

func (LogReporter) StateChanged(s State) {
	log.Info().Str("state", string(s)).Msg("receiver state")
}

func (LogReporter) Report(d Diagnostic) {
	ev := log.Info()
	switch d.Severity {
	case Warn:
		ev = log.Warn()
	case Err:
		ev = log.Error()
	}
	ev = ev.Str("code", d.Code)
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	for k, v := range d.Evidence {
		ev = ev.Interface(k, v)
	}
	ev.Msg(d.Summary)
}
