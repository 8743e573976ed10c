// services/keypad/internal/wake/wake.go
package wake

import (
	"context"
	"sync/atomic"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
)

// Signal is a single-slot notification between interrupt handlers and the
// foreground loop. Notify never blocks; repeated notifications before the
// foreground looks are coalesced into one.
type Signal struct {
	ch        chan struct{}
	fired     atomic.Uint32
	coalesced atomic.Uint32
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify marks a wake as pending. Safe to call from an ISR.
func (s *Signal) Notify() {
	s.fired.Add(1)
	select {
	case s.ch <- struct{}{}:
	default:
		s.coalesced.Add(1)
	}
}

// Pending consumes a pending notification, if any, without blocking.
func (s *Signal) Pending() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until a notification arrives or ctx ends.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fired returns how many times Notify ran.
func (s *Signal) Fired() uint32 { return s.fired.Load() }

// Coalesced returns how many notifications landed on an already pending one.
func (s *Signal) Coalesced() uint32 { return s.coalesced.Load() }

// Lines is a set of level-change inputs wired to the matrix columns.
type Lines struct {
	pins []halcore.IRQPin
}

// Arm configures each pin as a pulled-up input and attaches a handler that
// only notifies sig. On failure any handler already attached is removed.
func Arm(pins []halcore.IRQPin, sig *Signal) (*Lines, error) {
	if len(pins) == 0 || sig == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "wake", Msg: "no wake lines"}
	}
	l := &Lines{}
	for _, p := range pins {
		if err := p.ConfigureInput(halcore.PullUp); err != nil {
			l.Close()
			return nil, err
		}
		if err := p.SetIRQ(halcore.EdgeBoth, sig.Notify); err != nil {
			l.Close()
			return nil, err
		}
		l.pins = append(l.pins, p)
	}
	return l, nil
}

// Close detaches all handlers.
func (l *Lines) Close() {
	for _, p := range l.pins {
		_ = p.ClearIRQ()
	}
	l.pins = nil
}

// Low returns a bitmask of lines currently reading low (bit i = line i).
func (l *Lines) Low() uint32 {
	var m uint32
	for i, p := range l.pins {
		if !p.Get() {
			m |= 1 << i
		}
	}
	return m
}

// Len returns the number of armed lines.
func (l *Lines) Len() int { return len(l.pins) }
