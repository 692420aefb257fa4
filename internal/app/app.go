// Package app wires the receiver together and runs its control loop.
// One goroutine owns everything that touches the strip: radio poll,
// clock, scheduler, engine, driver. Collaborators hang off the sides
// through narrow interfaces so tests can script the loop tick by tick.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/picolume/firmware/internal/clock"
	"github.com/picolume/firmware/internal/config"
	"github.com/picolume/firmware/internal/metrics"
	"github.com/picolume/firmware/internal/radio"
	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/schedule"
	"github.com/picolume/firmware/internal/show"
	"github.com/picolume/firmware/internal/status"
)

const (
	statusInterval = time.Second
	reloadDebounce = 250 * time.Millisecond
)

// DriverFactory opens a strip driver for the given hardware record.
// The loop calls it at startup and again when a reload changes the
// strip; the closer may be nil for drivers with nothing to release.
type DriverFactory func(pc show.PropConfig) (render.Driver, io.Closer, error)

// Source is the loop's view of the radio: a non-blocking mailbox
// returning at most one packet per call. A nil Source means the radio
// never came up; the prop stays dark but keeps serving its monitor.
type Source interface {
	Poll() *radio.Packet
}

// Observer receives the loop's frame stream. *monitor.Server
// implements it; nil disables observation.
type Observer interface {
	PushFrame(frame []render.Pixel, showTimeMS int64, playing bool)
	SetLEDCount(n int)
}

// App is the receiver conductor. All methods except RequestReload must
// be called from the loop goroutine.
type App struct {
	cfg      *config.Config
	factory  DriverFactory
	src      Source
	reporter status.Reporter
	obs      Observer

	doc      *show.Document
	pc       show.PropConfig
	sched    *schedule.Scheduler
	engine   *render.Engine
	closer   io.Closer
	clk      *clock.Sync
	haveShow bool

	reload atomic.Bool

	interval      time.Duration
	lastTick      time.Time
	lastReload    time.Time
	lastStatusAt  time.Time
	lastActive    time.Time
	lastState     status.State
	prevLost      uint64
	suspended     bool
	driverFailing bool
	overrunning   bool
}

// New loads the show, opens the strip driver and assembles the loop.
// A missing or corrupt show file is not fatal: the prop runs dark with
// an empty document and reports NoShow. A driver that cannot open is
// fatal; hand in a factory that falls back to the sim driver if that
// is not acceptable.
func New(cfg *config.Config, factory DriverFactory, src Source, rep status.Reporter, obs Observer) (*App, error) {
	a := &App{
		cfg:      cfg,
		factory:  factory,
		src:      src,
		reporter: rep,
		obs:      obs,
		clk:      clock.New(),
		interval: time.Second / time.Duration(max(1, cfg.FPS)),
	}
	if a.reporter == nil {
		a.reporter = status.Multi{}
	}

	doc, err := show.Load(cfg.ShowPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.ShowPath).Msg("load show")
		a.reporter.Report(status.Diagnostic{
			Severity: status.Err,
			Code:     "SHOW.LOAD_FAILED",
			Summary:  "no show file, prop runs dark",
			Detail:   err.Error(),
		})
		doc = show.Empty()
	} else {
		a.haveShow = true
	}
	a.doc = doc
	a.pc = doc.ConfigFor(cfg.Identity)
	a.sched = schedule.New(doc, cfg.Identity)

	drv, closer, err := factory(a.pc)
	if err != nil {
		return nil, fmt.Errorf("open strip driver: %w", err)
	}
	a.closer = closer
	a.engine = render.NewEngine(drv, int(a.pc.LEDCount), a.pc.Chipset.White())
	if a.obs != nil {
		a.obs.SetLEDCount(int(a.pc.LEDCount))
	}
	if a.haveShow {
		a.reportLoaded()
	}
	return a, nil
}

// RequestReload asks the loop to re-read the show file on its next
// tick. Safe from any goroutine; SIGHUP lands here.
func (a *App) RequestReload() {
	a.reload.Store(true)
}

// Run drives the loop until ctx is cancelled. The strip is blacked out
// on the way down.
func (a *App) Run(ctx context.Context) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		for range sigc {
			a.RequestReload()
		}
	}()

	log.Info().
		Int("identity", a.cfg.Identity).
		Int("fps", a.cfg.FPS).
		Uint16("leds", a.pc.LEDCount).
		Str("chipset", a.pc.Chipset.String()).
		Msg("receiver loop running")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	a.lastTick = time.Now()
	for {
		select {
		case <-ctx.Done():
			if err := a.engine.Blackout(); err != nil {
				log.Debug().Err(err).Msg("blackout on shutdown")
			}
			return nil
		case now := <-ticker.C:
			a.tick(now)
		}
	}
}

// Close releases the strip driver.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// tick runs one loop iteration: radio, reload, clock, schedule,
// render, status. Exactly one of Apply/Advance touches the clock.
func (a *App) tick(now time.Time) {
	dt := now.Sub(a.lastTick)
	if a.lastTick.IsZero() {
		dt = 0
	}
	a.lastTick = now
	if a.lastActive.IsZero() {
		a.lastActive = now
	}

	applied := false
	if a.src != nil {
		if pkt := a.src.Poll(); pkt != nil {
			a.clk.Apply(pkt.TimeMS, pkt.Play, pkt.Counter, now)
			metrics.PacketsReceived.Inc()
			applied = true
		}
	}

	if a.reload.CompareAndSwap(true, false) && now.Sub(a.lastReload) >= reloadDebounce {
		a.lastReload = now
		a.reloadShow(now)
	}

	if !applied && a.clk.Playing() {
		a.clk.Advance(dt)
	}

	t := a.clk.Now()
	ev := a.sched.Select(t)

	if ev != nil {
		a.lastActive = now
		a.suspended = false
	} else if !a.suspended && now.Sub(a.lastActive) >= a.cfg.InactivityTimeout() {
		a.suspended = true
		if err := a.engine.Blackout(); err != nil {
			log.Debug().Err(err).Msg("inactivity blackout")
		}
		a.reporter.Report(status.Diagnostic{
			Severity: status.Info,
			Code:     "LOOP.IDLE_SUSPEND",
			Summary:  "no events matched, strip suspended",
			Detail:   a.cfg.InactivityTimeout().String(),
		})
	}

	if !a.suspended {
		a.renderFrame(ev, t)
	}

	metrics.SetClock(t, a.clk.Playing())
	if ev != nil {
		metrics.ActiveEffect.Set(float64(ev.Kind))
	} else {
		metrics.ActiveEffect.Set(-1)
	}

	if now.Sub(a.lastStatusAt) >= statusInterval {
		a.lastStatusAt = now
		a.refreshStatus(now)
	}
}

func (a *App) renderFrame(ev *show.Event, t int64) {
	wrote, err := a.engine.Frame(ev, t)
	metrics.FramesRendered.Inc()
	metrics.ObserveRender(time.Duration(a.engine.Last.RenderMS * float64(time.Millisecond)))
	if err != nil {
		log.Debug().Err(err).Msg("strip write")
		if !a.driverFailing {
			a.driverFailing = true
			a.reporter.Report(status.Diagnostic{
				Severity: status.Err,
				Code:     "DRIVER.WRITE_FAILED",
				Summary:  "strip writes failing",
				Detail:   err.Error(),
			})
		}
	} else {
		a.driverFailing = false
		if wrote {
			metrics.FramesTransmitted.Inc()
		}
	}

	if over := a.engine.Last.RenderMS > float64(a.interval.Milliseconds()); over != a.overrunning {
		a.overrunning = over
		if over {
			log.Warn().
				Float64("render_ms", a.engine.Last.RenderMS).
				Dur("interval", a.interval).
				Msg("frame render overruns loop interval")
		}
	}

	if a.obs != nil {
		a.obs.PushFrame(a.engine.Snapshot(), t, a.clk.Playing())
	}
}

func (a *App) reloadShow(now time.Time) {
	doc, err := show.Load(a.cfg.ShowPath)
	if err != nil {
		log.Error().Err(err).Str("path", a.cfg.ShowPath).Msg("reload show")
		a.reporter.Report(status.Diagnostic{
			Severity: status.Err,
			Code:     "SHOW.LOAD_FAILED",
			Summary:  "reload failed, keeping current show",
			Detail:   err.Error(),
		})
		return
	}

	a.doc = doc
	a.haveShow = true
	a.sched = schedule.New(doc, a.cfg.Identity)
	a.suspended = false
	a.lastActive = now

	if pc := doc.ConfigFor(a.cfg.Identity); pc != a.pc {
		drv, closer, err := a.factory(pc)
		if err != nil {
			// Keep driving the old strip; only the events changed.
			log.Error().Err(err).Msg("reopen strip driver")
			a.reporter.Report(status.Diagnostic{
				Severity: status.Err,
				Code:     "DRIVER.OPEN_FAILED",
				Summary:  "strip config changed but driver reopen failed, keeping old strip",
				Detail:   err.Error(),
			})
		} else {
			if a.closer != nil {
				a.closer.Close()
			}
			a.pc = pc
			a.closer = closer
			a.engine = render.NewEngine(drv, int(pc.LEDCount), pc.Chipset.White())
			if a.obs != nil {
				a.obs.SetLEDCount(int(pc.LEDCount))
			}
		}
	}
	a.reportLoaded()
}

func (a *App) reportLoaded() {
	a.reporter.Report(status.Diagnostic{
		Severity: status.Info,
		Code:     "SHOW.LOADED",
		Summary:  "show file loaded",
		Evidence: map[string]any{
			"version": a.doc.Header.Version,
			"events":  len(a.doc.Events),
			"mine":    a.sched.EventCount(),
			"leds":    a.pc.LEDCount,
		},
	})
}

func (a *App) refreshStatus(now time.Time) {
	if d := a.clk.Lost() - a.prevLost; d > 0 {
		a.prevLost = a.clk.Lost()
		metrics.PacketsLost.Add(float64(d))
	}

	st := a.currentState(now)
	if st == a.lastState {
		return
	}
	prev := a.lastState
	a.lastState = st
	a.reporter.StateChanged(st)
	if st == status.NoSignal {
		a.reporter.Report(status.Diagnostic{
			Severity: status.Warn,
			Code:     "RADIO.SIGNAL_LOST",
			Summary:  "no timecode packets, free-running",
			Detail:   a.cfg.SignalLossTimeout().String(),
		})
	} else if prev == status.NoSignal {
		a.reporter.Report(status.Diagnostic{
			Severity: status.Info,
			Code:     "RADIO.SIGNAL_ACQUIRED",
			Summary:  "timecode packets flowing",
		})
	}
}

func (a *App) currentState(now time.Time) status.State {
	switch {
	case a.src == nil:
		return status.RadioFailed
	case !a.haveShow:
		return status.NoShow
	case a.clk.SignalLost(a.cfg.SignalLossTimeout(), now):
		return status.NoSignal
	case a.sched.Complete(a.clk.Now()):
		return status.ShowComplete
	case a.clk.Playing():
		return status.Playing
	default:
		return status.Paused
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
