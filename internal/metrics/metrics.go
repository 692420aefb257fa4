// Package metrics exposes the receiver's prometheus instrumentation.
// Everything registers on the default registry via promauto; the
// monitor serves it under /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "picolume"

var (
	// FramesRendered counts frames produced by the effect engine.
	FramesRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Total number of frames rendered",
		},
	)

	// FramesTransmitted counts frames actually written to the strip.
	FramesTransmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_transmitted_total",
			Help:      "Total number of frames written to the LED driver",
		},
	)

	// PacketsReceived counts decoded timecode packets.
	PacketsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Total number of timecode packets received",
		},
	)

	// PacketsLost counts gaps in the transmitter's packet counter.
	PacketsLost = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_lost_total",
			Help:      "Total number of timecode packets missed",
		},
	)

	// RenderDuration measures time spent producing one frame.
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Frame render latency in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)

	// ShowTime mirrors the receiver's show clock.
	ShowTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "show_time_ms",
			Help:      "Current show time in milliseconds",
		},
	)

	// PlayingGauge is 1 while the show clock is running.
	PlayingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playing",
			Help:      "1 while the show clock is running, 0 while paused",
		},
	)

	// ActiveEffect is the numeric effect kind currently rendering, -1
	// when no event targets this prop.
	ActiveEffect = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_effect",
			Help:      "Numeric kind of the active effect, -1 when idle",
		},
	)
)

// ObserveRender records one frame render duration.
func ObserveRender(d time.Duration) {
	RenderDuration.Observe(d.Seconds())
}

// SetClock updates the show clock gauges.
func SetClock(showTimeMS int64, playing bool) {
	ShowTime.Set(float64(showTimeMS))
	if playing {
		PlayingGauge.Set(1)
	} else {
		PlayingGauge.Set(0)
	}
}
