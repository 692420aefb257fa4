package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/picolume/firmware/internal/app"
	"github.com/picolume/firmware/internal/config"
	"github.com/picolume/firmware/internal/monitor"
	"github.com/picolume/firmware/internal/radio"
	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/show"
	"github.com/picolume/firmware/internal/status"
	"github.com/picolume/firmware/internal/strip"
)

func main() {
	// ---- Flags (zero/empty means "take it from prop.yaml") ----
	var (
		identity   = flag.Int("identity", 0, "prop identity 1..224")
		showPath   = flag.String("show", "", "path to the show file")
		driver     = flag.String("driver", "", "driver: spi | pwm | sim")
		spiDev     = flag.String("spi-dev", "", "SPI port (e.g. /dev/spidev0.0)")
		spiSpeed   = flag.Int("spi-speed", 0, "SPI clock in Hz (0 derives it from the chipset)")
		gpio       = flag.Int("gpio", 0, "PWM data pin (BCM number) for rpi_ws281x")
		fps        = flag.Int("fps", 0, "loop frames per second")
		radioAddr  = flag.String("radio-addr", "", "timecode group address")
		monAddr    = flag.String("monitor-addr", "", "monitor HTTP address")
		configPath = flag.String("config", "prop.yaml", "path to prop.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config: prop.yaml (optional), explicit flags override ----
	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}
	if *identity > 0 {
		cfg.Identity = *identity
	}
	if *showPath != "" {
		cfg.ShowPath = *showPath
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *spiDev != "" {
		cfg.SPI.Dev = *spiDev
	}
	if *spiSpeed > 0 {
		cfg.SPI.SpeedHz = *spiSpeed
	}
	if *gpio > 0 {
		cfg.PWM.GPIO = *gpio
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *radioAddr != "" {
		cfg.Radio.Addr = *radioAddr
	}
	if *monAddr != "" {
		cfg.Monitor.Addr = *monAddr
	}

	// ---- Hardware host (SPI port enumeration) ----
	if cfg.Driver == "spi" {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; SPI will fall back to SIM")
		}
	}

	// ---- Strip driver factory (sim fallback keeps the prop booting) ----
	factory := func(pc show.PropConfig) (render.Driver, io.Closer, error) {
		switch cfg.Driver {
		case "spi":
			d, err := strip.OpenSPI(cfg.SPI.Dev, cfg.SPI.SpeedHz, pc)
			if err != nil {
				log.Warn().Err(err).
					Str("driver", "spi").
					Str("dev", cfg.SPI.Dev).
					Msg("SPI init failed; falling back to SIM")
				s := strip.NewSim(pc)
				return s, s, nil
			}
			return d, d, nil
		case "pwm":
			d, err := strip.NewPWM(cfg.PWM.GPIO, pc)
			if err != nil {
				log.Warn().Err(err).
					Str("driver", "pwm").
					Int("gpio", cfg.PWM.GPIO).
					Msg("PWM init failed; falling back to SIM")
				s := strip.NewSim(pc)
				return s, s, nil
			}
			return d, d, nil
		case "sim":
			s := strip.NewSim(pc)
			return s, s, nil
		default:
			log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
			s := strip.NewSim(pc)
			return s, s, nil
		}
	}

	// ---- Radio ----
	var src app.Source
	if lst, err := radio.Listen(cfg.Radio.Addr); err != nil {
		log.Error().Err(err).
			Str("addr", cfg.Radio.Addr).
			Msg("radio bind failed; prop stays dark but the monitor runs")
	} else {
		src = lst
		defer lst.Close()
		log.Info().Str("addr", cfg.Radio.Addr).Msg("listening for timecode")
	}

	// ---- Status surfaces ----
	reporters := status.Multi{status.LogReporter{}}
	var obs app.Observer
	if cfg.Monitor.Addr != "" {
		mon := monitor.NewServer(cfg.Monitor.Addr, cfg.Identity, 0)
		mon.Start()
		defer mon.Close()
		reporters = append(reporters, mon)
		obs = mon
		log.Info().Str("addr", cfg.Monitor.Addr).Msg("monitor serving")
	}

	// ---- Assemble and run ----
	a, err := app.New(cfg, factory, src, reporters, obs)
	if err != nil {
		log.Fatal().Err(err).Msg("receiver init failed")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("receiver loop failed")
	}
	log.Info().Msg("shutting down")
}
