// Package config holds the receiver's YAML configuration. A config
// file is optional; absent keys keep their defaults so a two-line
// file is enough for a typical prop.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picolume/firmware/internal/radio"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty picks the first port
	SpeedHz int    `yaml:"speed_hz"` // SPI clock override, 0 derives it from the chipset
}

type PWM struct {
	GPIO int `yaml:"gpio"`
}

type Radio struct {
	Addr         string `yaml:"addr"`
	SignalLossMs int    `yaml:"signal_loss_ms"`
}

type Monitor struct {
	Addr string `yaml:"addr"` // empty disables the monitor
}

type Config struct {
	Identity      int    `yaml:"identity"`
	ShowPath      string `yaml:"show_path"`
	Driver        string `yaml:"driver"` // "spi" | "pwm" | "sim"
	FPS           int    `yaml:"fps"`
	InactivityMin int    `yaml:"inactivity_min"`

	SPI     SPI     `yaml:"spi,omitempty"`
	PWM     PWM     `yaml:"pwm,omitempty"`
	Radio   Radio   `yaml:"radio"`
	Monitor Monitor `yaml:"monitor,omitempty"`
}

func Default() *Config {
	return &Config{
		Identity:      1,
		ShowPath:      "show.bin",
		Driver:        "sim",
		FPS:           50,
		InactivityMin: 30,
		PWM:           PWM{GPIO: 18},
		Radio:         Radio{Addr: radio.DefaultGroupAddr, SignalLossMs: 3000},
		Monitor:       Monitor{Addr: ":8081"},
	}
}

// Load reads path over the defaults, so partial files work.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) SignalLossTimeout() time.Duration {
	return time.Duration(c.Radio.SignalLossMs) * time.Millisecond
}

func (c *Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityMin) * time.Minute
}
