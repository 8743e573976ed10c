// Package keypad is an I2C keyboard-matrix controller: it scans a switch
// matrix, queues key transitions and serves them to a bus master through a
// register-addressed protocol, sleeping between bursts of activity.
package keypad

import (
	"context"
	"io"
	"sync/atomic"

	"keymatrix-go/services/keypad/internal/eventq"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/services/keypad/internal/matrix"
	"keymatrix-go/services/keypad/internal/platform"
	"keymatrix-go/services/keypad/internal/power"
	"keymatrix-go/services/keypad/internal/regproto"
	"keymatrix-go/services/keypad/internal/wake"
	"keymatrix-go/types"
	"keymatrix-go/x/logx"
	"keymatrix-go/x/timex"
)

// Service owns one controller. Run drives the foreground loop; Stats may be
// called from any goroutine.
type Service struct {
	cfg Config
	log *logx.Logger

	queue   *eventq.Queue
	scanner *matrix.Scanner
	resp    *regproto.Responder
	sig     *wake.Signal
	lines   *wake.Lines
	power   *power.Manager

	target    halcore.Target
	indicator halcore.GPIOPin
	lit       atomic.Bool
}

// Stats is a point-in-time snapshot of the controller's counters.
type Stats struct {
	Mode  string
	State types.SleepState

	Scans  uint32 // completed matrix sweeps
	Held   int    // keys down at the last sweep
	Sleeps uint32
	Wakes  uint32

	WakeSignals uint32 // wake interrupts taken
	Coalesced   uint32 // wake interrupts that found one already pending

	Queued   int // bytes waiting for the master
	Capacity int
	Drops    uint32 // events lost to a full queue

	Reads    uint32 // event-register reads
	Served   uint32 // event bytes handed out
	Selected uint8

	Indicator bool
}

// New validates cfg, opens the board it names and wires a controller.
func New(cfg Config, log *logx.Logger) (*Service, error) {
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := platform.Open(cfg.Board)
	if err != nil {
		return nil, err
	}
	return build(cfg, res, log, nil)
}

// Console returns the log destination named by cfg's board.
func Console(cfg Config) io.Writer { return platform.Console(cfg.Board.Console) }

func build(cfg Config, res platform.Resources, log *logx.Logger, clock timex.Clock) (*Service, error) {
	s := &Service{
		cfg:       cfg,
		log:       log,
		sig:       wake.NewSignal(),
		target:    res.Target,
		indicator: res.Indicator,
	}

	rows := matrix.Rows(res.Rows)
	var scan power.Scanner
	var onWake func()
	switch cfg.Mode {
	case ModeIndicator:
		for _, r := range res.Rows {
			if err := r.ConfigureOutput(true); err != nil {
				return nil, err
			}
		}
		if err := s.indicator.ConfigureOutput(false); err != nil {
			return nil, err
		}
		onWake = s.toggleIndicator
	default:
		s.queue = eventq.New(cfg.QueueCapacity)
		sc, err := matrix.New(res.Rows, res.Cols, s.queue, cfg.Settle)
		if err != nil {
			return nil, err
		}
		if err := sc.Configure(); err != nil {
			return nil, err
		}
		s.scanner = sc
		scan = sc
		s.resp = regproto.New(s.queue, regproto.Config{
			ProbeRegister: cfg.ProbeRegister,
			EventRegister: cfg.EventRegister,
		}, log.With("regproto"))
	}

	lines, err := wake.Arm(res.Wake, s.sig)
	if err != nil {
		return nil, err
	}
	s.lines = lines

	pm, err := power.New(power.Params{
		Signal:  s.sig,
		Rows:    rows,
		Scanner: scan,
		Gate:    res.Gate,
		Clock:   clock,
		Log:     log.With("power"),
		Hold:    cfg.WakeHold,
		OnWake:  onWake,
	})
	if err != nil {
		lines.Close()
		return nil, err
	}
	s.power = pm
	return s, nil
}

// Run serves the bus in the background (protocol mode) and runs the
// scan/sleep loop until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("starting",
		"board", s.cfg.Board.Name,
		"mode", s.cfg.Mode,
		"keys", s.cfg.Board.Keys(),
		"wake_lines", s.lines.Len())
	if s.resp != nil {
		go func() {
			if err := s.Serve(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("bus stopped", "err", err)
			}
		}()
	}
	return s.power.Run(ctx, s.cfg.ScanPeriod)
}

// Serve answers the bus master until the target fails or ctx ends. It
// returns immediately in indicator mode.
func (s *Service) Serve(ctx context.Context) error {
	if s.resp == nil || s.target == nil {
		return nil
	}
	if c, ok := s.target.(interface{ Close() }); ok {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-stop:
			}
		}()
	}
	return s.resp.Serve(ctx, s.target, s.cfg.Address)
}

// Step advances the power state machine once. Tests and the simulator use
// it to drive the loop without a ticker.
func (s *Service) Step(ctx context.Context) error { return s.power.Step(ctx) }

// Close detaches the wake interrupts.
func (s *Service) Close() { s.lines.Close() }

// Config returns the normalised configuration in use.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) Stats() Stats {
	st := Stats{
		Mode:        s.cfg.Mode,
		State:       s.power.State(),
		Sleeps:      s.power.Sleeps(),
		Wakes:       s.power.Wakes(),
		WakeSignals: s.sig.Fired(),
		Coalesced:   s.sig.Coalesced(),
		Indicator:   s.lit.Load(),
	}
	if s.scanner != nil {
		st.Scans = s.scanner.Scans()
		st.Held = s.scanner.Held()
	}
	if s.queue != nil {
		st.Queued = s.queue.Len()
		st.Capacity = s.queue.Cap()
		st.Drops = s.queue.Drops()
	}
	if s.resp != nil {
		st.Reads = s.resp.Reads()
		st.Served = s.resp.Served()
		st.Selected = s.resp.Selected()
	}
	return st
}

// Pressed reports key idx as of the last sweep.
func (s *Service) Pressed(idx int) bool {
	return s.scanner != nil && s.scanner.Pressed(idx)
}

func (s *Service) toggleIndicator() {
	on := !s.lit.Load()
	s.lit.Store(on)
	s.indicator.Set(on)
	s.log.Debug("indicator", "on", on)
}
