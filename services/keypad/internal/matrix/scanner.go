// services/keypad/internal/matrix/scanner.go
package matrix

import (
	"math/bits"
	"sync/atomic"
	"time"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/types"
)

// Row lines idle high and are driven low to select; columns are pulled up
// and read low when a switch on the selected row is closed.
const (
	levelIdle   = true
	levelActive = false
)

// Sink receives detected transitions. *eventq.Queue satisfies it.
type Sink interface {
	Push(ev types.KeyEvent) bool
}

// Rows is the set of row driver lines.
type Rows []halcore.GPIOPin

// Idle drives every row high (no row selected).
func (r Rows) Idle() { r.setAll(levelIdle) }

// Arm drives every row low so that closing any switch pulls its column low.
func (r Rows) Arm() { r.setAll(levelActive) }

func (r Rows) setAll(level bool) {
	for _, p := range r {
		p.Set(level)
	}
}

// Scanner sweeps the matrix and reports changed keys.
type Scanner struct {
	rows   Rows
	cols   []halcore.GPIOPin
	sink   Sink
	settle time.Duration
	delay  func(time.Duration)

	state uint64 // bit i set = key i pressed; foreground only
	snap  atomic.Uint64
	scans atomic.Uint32
}

// New checks the geometry and returns a scanner. Pins are not touched until
// Configure.
func New(rows, cols []halcore.GPIOPin, sink Sink, settle time.Duration) (*Scanner, error) {
	if len(rows) == 0 || len(cols) == 0 || len(rows)*len(cols) > types.MaxKeys {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "matrix", Msg: "rows*cols must be 1..64"}
	}
	if sink == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "matrix", Msg: "nil sink"}
	}
	return &Scanner{
		rows:   Rows(rows),
		cols:   cols,
		sink:   sink,
		settle: settle,
		delay:  time.Sleep,
	}, nil
}

// Configure sets rows as outputs at idle level and columns as pulled-up inputs.
func (s *Scanner) Configure() error {
	for _, p := range s.rows {
		if err := p.ConfigureOutput(levelIdle); err != nil {
			return err
		}
	}
	for _, p := range s.cols {
		if err := p.ConfigureInput(halcore.PullUp); err != nil {
			return err
		}
	}
	return nil
}

// Scan performs one full sweep and returns the number of transitions seen.
// Transitions are pushed in row-major, then column order. A transition the
// sink rejects is still recorded as the new key state.
func (s *Scanner) Scan() int {
	n := 0
	nc := len(s.cols)
	for r, row := range s.rows {
		s.rows.Idle()
		row.Set(levelActive)
		if s.settle > 0 {
			s.delay(s.settle)
		}
		for c, col := range s.cols {
			idx := r*nc + c
			bit := uint64(1) << idx
			pressed := col.Get() == levelActive
			if pressed == (s.state&bit != 0) {
				continue
			}
			s.state ^= bit
			s.sink.Push(types.KeyEvent{Index: uint8(idx), Pressed: pressed})
			n++
		}
	}
	s.rows.Idle()
	s.snap.Store(s.state)
	s.scans.Add(1)
	return n
}

// Pressed reports the state of key idx as of the last completed sweep. Safe
// to call from any goroutine.
func (s *Scanner) Pressed(idx int) bool {
	if idx < 0 || idx >= len(s.rows)*len(s.cols) {
		return false
	}
	return s.snap.Load()&(uint64(1)<<idx) != 0
}

// Held returns how many keys were down at the last sweep.
func (s *Scanner) Held() int { return bits.OnesCount64(s.snap.Load()) }

// Rows exposes the row lines so the power manager can arm wake detection.
func (s *Scanner) Rows() Rows { return s.rows }

// Keys returns rows*cols.
func (s *Scanner) Keys() int { return len(s.rows) * len(s.cols) }

// Scans returns the number of completed sweeps.
func (s *Scanner) Scans() uint32 { return s.scans.Load() }
