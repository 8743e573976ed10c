//go:build !(rp2040 || rp2350)

package keypad

import (
	"tinygo.org/x/drivers"

	"keymatrix-go/services/keypad/internal/platform"
	"keymatrix-go/x/logx"
	"keymatrix-go/x/timex"
)

var _ drivers.I2C = (*platform.FakeTarget)(nil)

// Sim is the switch matrix and bus master side of a simulated board.
type Sim struct {
	p *platform.Sim
}

// NewSim wires a Service to a simulated board described by cfg.
func NewSim(cfg Config, log *logx.Logger) (*Service, *Sim, error) {
	return newSim(cfg, log, nil)
}

func newSim(cfg Config, log *logx.Logger, clock timex.Clock) (*Service, *Sim, error) {
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	res, ps, err := platform.OpenSim(cfg.Board)
	if err != nil {
		return nil, nil, err
	}
	svc, err := build(cfg, res, log, clock)
	if err != nil {
		return nil, nil, err
	}
	return svc, &Sim{p: ps}, nil
}

// Press closes switch idx.
func (s *Sim) Press(idx int) { s.p.Matrix.Press(idx) }

// Release opens switch idx.
func (s *Sim) Release(idx int) { s.p.Matrix.Release(idx) }

// Closed reports whether switch idx is held.
func (s *Sim) Closed(idx int) bool { return s.p.Matrix.Closed(idx) }

// Bus returns the master end of the simulated I2C link.
func (s *Sim) Bus() drivers.I2C { return s.p.Target }

// Ready is closed once the controller listens on the bus.
func (s *Sim) Ready() <-chan struct{} { return s.p.Target.Ready() }

// Suspended reports whether the power gate is off.
func (s *Sim) Suspended() bool { return s.p.Gate.Suspended() }

// Indicator reports the indicator output level.
func (s *Sim) Indicator() bool {
	if s.p.Indicator == nil {
		return false
	}
	return s.p.Indicator.Get()
}

// Close disconnects the bus; a running Serve returns.
func (s *Sim) Close() { s.p.Target.Close() }
