// services/keypad/internal/power/manager.go
package power

import (
	"context"
	"sync/atomic"
	"time"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/services/keypad/internal/wake"
	"keymatrix-go/types"
	"keymatrix-go/x/logx"
	"keymatrix-go/x/timex"
)

// Scanner is one matrix sweep returning the number of transitions.
type Scanner interface {
	Scan() int
}

// RowDriver arms (all rows low) and disarms (all rows high) wake detection.
type RowDriver interface {
	Idle()
	Arm()
}

// Params wires a Manager. Scanner may be nil (indicator mode); Gate and
// OnWake are optional.
type Params struct {
	Signal  *wake.Signal
	Rows    RowDriver
	Scanner Scanner
	Gate    halcore.PowerGate
	Clock   timex.Clock
	Log     *logx.Logger

	// Hold keeps the controller awake for this long after the last wake or
	// key transition.
	Hold time.Duration
	// OnWake runs in the foreground right after resuming.
	OnWake func()
}

// Manager is the AWAKE/ASLEEP state machine. Step and Run belong to the
// foreground loop; the accessors may be read from anywhere.
type Manager struct {
	sig    *wake.Signal
	rows   RowDriver
	scan   Scanner
	gate   halcore.PowerGate
	clock  timex.Clock
	log    *logx.Logger
	hold   time.Duration
	onWake func()

	state        atomic.Uint32 // types.SleepState
	lastActivity time.Time

	sleeps atomic.Uint32
	wakes  atomic.Uint32
	passes atomic.Uint32
}

// New returns a Manager in the AWAKE state. Boot counts as activity, so the
// first sleep comes no earlier than Hold after construction.
func New(p Params) (*Manager, error) {
	if p.Signal == nil || p.Rows == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "power", Msg: "signal and rows are required"}
	}
	if p.Clock == nil {
		p.Clock = timex.System{}
	}
	m := &Manager{
		sig:    p.Signal,
		rows:   p.Rows,
		scan:   p.Scanner,
		gate:   p.Gate,
		clock:  p.Clock,
		log:    p.Log,
		hold:   p.Hold,
		onWake: p.OnWake,
	}
	m.lastActivity = m.clock.Now()
	m.rows.Idle()
	return m, nil
}

// Step advances the state machine once.
//
// AWAKE: run one scan, fold any pending wake signal or transition into the
// activity time, and go to sleep if the hold window has passed.
// ASLEEP: block until the wake signal fires (or ctx ends), resume, then run
// exactly one scan.
func (m *Manager) Step(ctx context.Context) error {
	if m.State() == types.Asleep {
		if err := m.sig.Wait(ctx); err != nil {
			return err
		}
		m.resume()
		m.sweep()
		m.sig.Pending()
		return nil
	}

	woke := m.sig.Pending()
	n := m.sweep()
	// Driving rows can toggle a wake column under a held key. A real
	// closure during the sweep is already counted in n.
	m.sig.Pending()
	if n > 0 || woke {
		m.lastActivity = m.clock.Now()
	}
	if timex.Since(m.clock, m.lastActivity) < m.hold {
		return nil
	}
	m.sleep()
	return nil
}

// Run steps the machine on a fixed cadence until ctx ends. While ASLEEP the
// cadence is suspended and Step blocks on the wake signal.
func (m *Manager) Run(ctx context.Context, period time.Duration) error {
	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		slept := m.State() == types.Asleep
		if err := m.Step(ctx); err != nil {
			return err
		}
		if m.State() == types.Asleep {
			continue
		}
		if slept {
			// Discard ticks that piled up while asleep.
			tick.Reset(period)
			select {
			case <-tick.C:
			default:
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (m *Manager) sweep() int {
	if m.scan == nil {
		return 0
	}
	m.passes.Add(1)
	return m.scan.Scan()
}

func (m *Manager) sleep() {
	if m.gate != nil {
		m.gate.Suspend()
	}
	m.rows.Arm()
	// A held key on a wake column pulls it low here; its release wakes us.
	m.sig.Pending()
	m.state.Store(uint32(types.Asleep))
	m.sleeps.Add(1)
	m.log.Debug("asleep", "sleeps", m.sleeps.Load(), "passes", m.passes.Load())
}

func (m *Manager) resume() {
	if m.gate != nil {
		m.gate.Resume()
	}
	m.rows.Idle()
	// Rows going idle can toggle the columns again; that is not a new wake.
	m.sig.Pending()
	m.state.Store(uint32(types.Awake))
	m.lastActivity = m.clock.Now()
	m.wakes.Add(1)
	m.log.Debug("awake", "wakes", m.wakes.Load())
	if m.onWake != nil {
		m.onWake()
	}
}

// State returns the current power state.
func (m *Manager) State() types.SleepState { return types.SleepState(m.state.Load()) }

// Sleeps returns how many times the controller went to sleep.
func (m *Manager) Sleeps() uint32 { return m.sleeps.Load() }

// Wakes returns how many times the controller woke.
func (m *Manager) Wakes() uint32 { return m.wakes.Load() }

// Passes returns how many scan passes the manager ran.
func (m *Manager) Passes() uint32 { return m.passes.Load() }
