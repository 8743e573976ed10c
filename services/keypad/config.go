package keypad

import (
	"time"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/platform/setups"
	"keymatrix-go/types"
	"keymatrix-go/x/mathx"
	"keymatrix-go/x/strx"
)

// Operating modes.
const (
	ModeProtocol  = "protocol"  // register-protocol emulation
	ModeIndicator = "indicator" // toggle the indicator on each wake; no scanning, no bus
)

const (
	DefaultAddress       uint16 = 0x34
	DefaultQueueCapacity        = 16
	DefaultScanPeriod           = 10 * time.Millisecond
	DefaultSettle               = 10 * time.Microsecond
	DefaultWakeHold             = 20 * time.Millisecond
)

// Config is the full operating description of one controller.
type Config struct {
	Board types.KeypadPlan `yaml:"board"`

	Mode    string `yaml:"mode"`
	Address uint16 `yaml:"address"`

	// QueueCapacity is in bytes; two per event.
	QueueCapacity int `yaml:"queue_capacity"`

	ScanPeriod time.Duration `yaml:"scan_period"`
	Settle     time.Duration `yaml:"settle"`
	WakeHold   time.Duration `yaml:"wake_hold"`

	ProbeRegister uint8 `yaml:"probe_register"`
	EventRegister uint8 `yaml:"event_register"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the reference configuration on the selected board.
func DefaultConfig() Config {
	return Config{
		Board:         setups.Selected,
		Mode:          ModeProtocol,
		Address:       DefaultAddress,
		QueueCapacity: DefaultQueueCapacity,
		ScanPeriod:    DefaultScanPeriod,
		Settle:        DefaultSettle,
		WakeHold:      DefaultWakeHold,
		ProbeRegister: 0x01,
		EventRegister: 0x04,
		LogLevel:      "info",
	}
}

// Normalise fills empty fields and clamps timings and sizes into their
// working ranges.
func (c *Config) Normalise() {
	c.Mode = strx.Coalesce(c.Mode, ModeProtocol)
	c.LogLevel = strx.Coalesce(c.LogLevel, "info")
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	// One read drains the whole queue; keep it whole events and under 255.
	c.QueueCapacity = mathx.Even(mathx.Clamp(c.QueueCapacity, types.EventBytes, 254))
	if c.ScanPeriod == 0 {
		c.ScanPeriod = DefaultScanPeriod
	}
	c.ScanPeriod = mathx.Clamp(c.ScanPeriod, time.Millisecond, time.Second)
	c.Settle = mathx.Clamp(c.Settle, 0, time.Millisecond)
	c.WakeHold = mathx.Clamp(c.WakeHold, 0, 10*time.Second)
}

// Validate reports the first problem that would stop the controller from
// starting. Pin-level checks happen when the platform is opened.
func (c Config) Validate() error {
	if !strx.OneOf(c.Mode, ModeProtocol, ModeIndicator) {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "mode " + c.Mode}
	}
	b := c.Board
	if len(b.Rows) == 0 || len(b.Cols) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "empty matrix"}
	}
	if b.Keys() > types.MaxKeys {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "matrix larger than 64 keys"}
	}
	if !mathx.Between(len(b.WakeLines), 1, 4) {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "need 1..4 wake lines"}
	}
	if c.Mode == ModeIndicator && b.Indicator < 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "indicator mode without indicator pin"}
	}
	if c.Mode == ModeProtocol {
		if b.Bus.ID == "" {
			return &errcode.E{C: errcode.UnknownBus, Op: "config", Msg: "no bus"}
		}
		if !mathx.Between(c.Address, 0x08, 0x77) {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "address outside 0x08..0x77"}
		}
		if c.ProbeRegister == c.EventRegister {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "probe and event registers collide"}
		}
	}
	if c.QueueCapacity < types.EventBytes || c.QueueCapacity%types.EventBytes != 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "queue capacity"}
	}
	return nil
}
