//go:build !(rp2040 || rp2350)

package platform

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/types"
)

// Host pin numbers are labels only.
const hostMaxPin = 63

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin and IRQPin for host-side tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	irqEdge halcore.Edge
	irqFunc func()
	watch   func() // runs after a level change, outside the lock
}

func NewFakePin(n int, level bool) *FakePin { return &FakePin{number: n, level: level} }

func (p *FakePin) ConfigureInput(_ halcore.Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.mu.Unlock()
	p.Set(initial)
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	edge := edgeFrom(old, level)
	irq := p.irqFunc
	want := irqWanted(p.irqEdge, edge)
	watch := p.watch
	p.mu.Unlock()
	if want && irq != nil {
		irq() // ISR-style callback
	}
	if old != level && watch != nil {
		watch()
	}
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

// Driven reports whether the pin is an output and the level it drives.
func (p *FakePin) Driven() (out, level bool) {
	p.mu.RLock()
	out, level = p.modeOut, p.level
	p.mu.RUnlock()
	return out, level
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = halcore.EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

func edgeFrom(old, new bool) halcore.Edge {
	switch {
	case !old && new:
		return halcore.EdgeRising
	case old && !new:
		return halcore.EdgeFalling
	default:
		return halcore.EdgeNone
	}
}

func irqWanted(cfg, seen halcore.Edge) bool {
	switch cfg {
	case halcore.EdgeBoth:
		return seen == halcore.EdgeRising || seen == halcore.EdgeFalling
	default:
		return cfg != halcore.EdgeNone && cfg == seen
	}
}

// ----------------------------- Matrix (host) ---------------------------------

// SimMatrix models the switch grid between row and column lines. A column
// reads low while any closed switch on it meets a row driven low. Wake lines
// follow their column and raise interrupts on every change.
type SimMatrix struct {
	mu     sync.Mutex
	rows   []*FakePin
	cols   []*simCol
	closed []bool

	rmu  sync.Mutex // serialises wake-line refreshes
	wake []*FakePin
	wcol []int
}

func NewSimMatrix(p types.KeypadPlan) *SimMatrix {
	m := &SimMatrix{closed: make([]bool, p.Keys())}
	for i, n := range p.WakeLines {
		m.wake = append(m.wake, NewFakePin(n, true))
		m.wcol = append(m.wcol, wakeColumn(p, i))
	}
	for c, n := range p.Cols {
		m.cols = append(m.cols, &simCol{m: m, c: c, n: n})
	}
	for _, n := range p.Rows {
		r := NewFakePin(n, true)
		r.watch = m.refresh
		m.rows = append(m.rows, r)
	}
	return m
}

// wakeColumn returns the column a wake line watches: the column on the same
// GPIO, else the column at the same position.
func wakeColumn(p types.KeypadPlan, i int) int {
	n := p.WakeLines[i]
	for c, cn := range p.Cols {
		if cn == n {
			return c
		}
	}
	return i % len(p.Cols)
}

func (m *SimMatrix) Rows() []halcore.GPIOPin {
	out := make([]halcore.GPIOPin, len(m.rows))
	for i, r := range m.rows {
		out[i] = r
	}
	return out
}

func (m *SimMatrix) Cols() []halcore.GPIOPin {
	out := make([]halcore.GPIOPin, len(m.cols))
	for i, c := range m.cols {
		out[i] = c
	}
	return out
}

func (m *SimMatrix) Wake() []halcore.IRQPin {
	out := make([]halcore.IRQPin, len(m.wake))
	for i, w := range m.wake {
		out[i] = w
	}
	return out
}

// WakePin exposes wake line i for tests.
func (m *SimMatrix) WakePin(i int) *FakePin { return m.wake[i] }

// Keys returns rows*cols.
func (m *SimMatrix) Keys() int { return len(m.closed) }

// Press closes switch idx. Out-of-range indexes are ignored.
func (m *SimMatrix) Press(idx int) { m.set(idx, true) }

// Release opens switch idx.
func (m *SimMatrix) Release(idx int) { m.set(idx, false) }

// Closed reports whether switch idx is held.
func (m *SimMatrix) Closed(idx int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return idx >= 0 && idx < len(m.closed) && m.closed[idx]
}

func (m *SimMatrix) set(idx int, closed bool) {
	m.mu.Lock()
	if idx < 0 || idx >= len(m.closed) || m.closed[idx] == closed {
		m.mu.Unlock()
		return
	}
	m.closed[idx] = closed
	m.mu.Unlock()
	m.refresh()
}

func (m *SimMatrix) colLevel(c int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cols := len(m.cols)
	for r, row := range m.rows {
		if !m.closed[r*cols+c] {
			continue
		}
		if out, level := row.Driven(); out && !level {
			return false
		}
	}
	return true
}

func (m *SimMatrix) refresh() {
	m.rmu.Lock()
	defer m.rmu.Unlock()
	for i, w := range m.wake {
		w.Set(m.colLevel(m.wcol[i]))
	}
}

// simCol is a pulled-up column input.
type simCol struct {
	m *SimMatrix
	c int
	n int
}

func (s *simCol) ConfigureInput(_ halcore.Pull) error { return nil }
func (s *simCol) ConfigureOutput(bool) error {
	return &errcode.E{C: errcode.Unsupported, Op: "sim", Msg: "column is input only"}
}
func (s *simCol) Set(bool)    {}
func (s *simCol) Get() bool   { return s.m.colLevel(s.c) }
func (s *simCol) Number() int { return s.n }

// ----------------------------- I²C target (host) -----------------------------

var errTargetClosed = errors.New("target closed")

type hostEvent struct {
	evt  halcore.TargetEvent
	data []byte
}

// FakeTarget is both ends of an in-memory I²C link. Serve consumes it as a
// halcore.Target; a bus-master driver uses it as drivers.I2C through Tx.
// Short replies are padded with types.IdleByte as an idle bus would.
type FakeTarget struct {
	txMu sync.Mutex

	mu        sync.Mutex
	addr      uint16
	listening bool

	events  chan hostEvent
	replies chan []byte
	ready   chan struct{} // closed by the first Listen
	done    chan struct{}
	once    sync.Once
	timeout time.Duration
}

func NewFakeTarget() *FakeTarget {
	return &FakeTarget{
		events:  make(chan hostEvent),
		replies: make(chan []byte, 1),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		timeout: 250 * time.Millisecond,
	}
}

func (t *FakeTarget) Listen(addr uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addr = addr
	if !t.listening {
		t.listening = true
		close(t.ready)
	}
	return nil
}

// Ready is closed once the target side is listening.
func (t *FakeTarget) Ready() <-chan struct{} { return t.ready }

func (t *FakeTarget) WaitForEvent(buf []byte) (halcore.TargetEvent, int, error) {
	select {
	case e := <-t.events:
		return e.evt, copy(buf, e.data), nil
	case <-t.done:
		return 0, 0, errTargetClosed
	}
}

func (t *FakeTarget) Reply(buf []byte) error {
	p := append([]byte(nil), buf...)
	select {
	case t.replies <- p:
		return nil
	case <-t.done:
		return errTargetClosed
	default:
		return errcode.Busy
	}
}

// Close unblocks both ends.
func (t *FakeTarget) Close() { t.once.Do(func() { close(t.done) }) }

// Tx performs one master transaction: an optional write, an optional read
// after a repeated start, then stop.
func (t *FakeTarget) Tx(addr uint16, w, r []byte) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	t.mu.Lock()
	ok := t.listening && t.addr == addr
	t.mu.Unlock()
	if !ok {
		return &errcode.E{C: errcode.BusError, Op: "tx", Msg: "nack"}
	}
	select {
	case <-t.replies: // stale answer to an abandoned read
	default:
	}

	if len(w) > 0 {
		if err := t.send(hostEvent{evt: halcore.TargetReceive, data: append([]byte(nil), w...)}); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := t.send(hostEvent{evt: halcore.TargetRequest}); err != nil {
			return err
		}
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		select {
		case p := <-t.replies:
			n := copy(r, p)
			for i := n; i < len(r); i++ {
				r[i] = types.IdleByte
			}
		case <-t.done:
			return errTargetClosed
		case <-timer.C:
			return &errcode.E{C: errcode.Timeout, Op: "tx", Msg: "no reply"}
		}
	}
	return t.send(hostEvent{evt: halcore.TargetFinish})
}

func (t *FakeTarget) send(e hostEvent) error {
	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case t.events <- e:
		return nil
	case <-t.done:
		return errTargetClosed
	case <-timer.C:
		return &errcode.E{C: errcode.Timeout, Op: "tx", Msg: "target not serving"}
	}
}

// ----------------------------- Power (host) ----------------------------------

// FakeGate records suspend/resume calls.
type FakeGate struct {
	suspended atomic.Bool
	suspends  atomic.Uint32
}

func (g *FakeGate) Suspend() {
	g.suspended.Store(true)
	g.suspends.Add(1)
}

func (g *FakeGate) Resume() { g.suspended.Store(false) }

func (g *FakeGate) Suspended() bool  { return g.suspended.Load() }
func (g *FakeGate) Suspends() uint32 { return g.suspends.Load() }

// ----------------------------- Board (host) ----------------------------------

// Sim is the host stand-in for a wired board.
type Sim struct {
	Matrix    *SimMatrix
	Target    *FakeTarget
	Gate      *FakeGate
	Indicator *FakePin // nil without one
}

// OpenSim builds simulated resources for p.
func OpenSim(p types.KeypadPlan) (Resources, *Sim, error) {
	if len(p.Rows) == 0 || len(p.Cols) == 0 || len(p.WakeLines) == 0 {
		return Resources{}, nil, &errcode.E{C: errcode.InvalidParams, Op: "plan", Msg: "empty matrix or no wake lines"}
	}
	if err := CheckPlan(p, 0, hostMaxPin); err != nil {
		return Resources{}, nil, err
	}
	m := NewSimMatrix(p)
	sim := &Sim{Matrix: m, Target: NewFakeTarget(), Gate: &FakeGate{}}
	res := Resources{
		Rows:   m.Rows(),
		Cols:   m.Cols(),
		Wake:   m.Wake(),
		Target: sim.Target,
		Gate:   sim.Gate,
	}
	if p.Indicator >= 0 {
		sim.Indicator = NewFakePin(p.Indicator, false)
		res.Indicator = sim.Indicator
	}
	return res, sim, nil
}

// Open builds resources for p. On the host these are simulated.
func Open(p types.KeypadPlan) (Resources, error) {
	res, _, err := OpenSim(p)
	return res, err
}

// Console returns the log sink for p. The host logs to stderr.
func Console(_ types.UARTPlan) io.Writer { return os.Stderr }
