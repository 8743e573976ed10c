package keypad

import (
	"testing"
	"time"

	"keymatrix-go/errcode"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	c.Normalise()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Address != 0x34 || c.QueueCapacity != 16 || c.ScanPeriod != 10*time.Millisecond || c.WakeHold != 20*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ProbeRegister != 0x01 || c.EventRegister != 0x04 {
		t.Fatalf("registers = %#x/%#x", c.ProbeRegister, c.EventRegister)
	}
}

func TestNormalise(t *testing.T) {
	cases := []struct {
		name    string
		in      Config
		capWant int
		period  time.Duration
	}{
		{"zero fills defaults", Config{}, 16, 10 * time.Millisecond},
		{"odd capacity rounds down", Config{QueueCapacity: 17, ScanPeriod: time.Millisecond}, 16, time.Millisecond},
		{"capacity capped", Config{QueueCapacity: 1000}, 254, 10 * time.Millisecond},
		{"tiny capacity raised", Config{QueueCapacity: 1}, 2, 10 * time.Millisecond},
		{"slow period capped", Config{ScanPeriod: 5 * time.Second}, 16, time.Second},
		{"fast period raised", Config{ScanPeriod: time.Microsecond}, 16, time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.in
			c.Normalise()
			if c.QueueCapacity != tc.capWant {
				t.Fatalf("capacity = %d, want %d", c.QueueCapacity, tc.capWant)
			}
			if c.ScanPeriod != tc.period {
				t.Fatalf("period = %v, want %v", c.ScanPeriod, tc.period)
			}
			if c.Mode != ModeProtocol || c.Address != DefaultAddress || c.LogLevel != "info" {
				t.Fatalf("defaults not filled: %+v", c)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want errcode.Code
	}{
		{"unknown mode", func(c *Config) { c.Mode = "turbo" }, errcode.InvalidParams},
		{"no rows", func(c *Config) { c.Board.Rows = nil }, errcode.InvalidParams},
		{"too many keys", func(c *Config) {
			c.Board.Rows = make([]int, 9)
			c.Board.Cols = make([]int, 8)
		}, errcode.InvalidParams},
		{"no wake lines", func(c *Config) { c.Board.WakeLines = nil }, errcode.InvalidParams},
		{"five wake lines", func(c *Config) { c.Board.WakeLines = []int{1, 2, 3, 6, 7} }, errcode.InvalidParams},
		{"indicator mode without pin", func(c *Config) {
			c.Mode = ModeIndicator
			c.Board.Indicator = -1
		}, errcode.InvalidParams},
		{"no bus", func(c *Config) { c.Board.Bus.ID = "" }, errcode.UnknownBus},
		{"reserved address", func(c *Config) { c.Address = 0x03 }, errcode.InvalidParams},
		{"register collision", func(c *Config) { c.EventRegister = c.ProbeRegister }, errcode.InvalidParams},
		{"odd capacity", func(c *Config) { c.QueueCapacity = 15 }, errcode.InvalidParams},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mut(&c)
			err := c.Validate()
			if got := errcode.Of(err); got != tc.want {
				t.Fatalf("code = %q (%v), want %q", got, err, tc.want)
			}
		})
	}
}

func TestValidateIndicatorModeNeedsNoBus(t *testing.T) {
	c := DefaultConfig()
	c.Mode = ModeIndicator
	c.Board.Bus.ID = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
