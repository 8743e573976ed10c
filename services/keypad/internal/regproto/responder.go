// services/keypad/internal/regproto/responder.go
package regproto

import (
	"context"
	"sync/atomic"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/x/logx"
)

// Register map, following the TCA8418 layout so stock host drivers find what
// they expect: CFG answers presence probes, KEY_EVENT_A drains the FIFO.
const (
	DefaultProbeRegister uint8 = 0x01
	DefaultEventRegister uint8 = 0x04

	// ScratchSize bounds the trailing data kept from one write.
	ScratchSize = 8

	placeholder byte = 0x00
)

// Drainer is the consumer side of the event queue.
type Drainer interface {
	Drain(dst []byte) int
	Cap() int
}

type Config struct {
	ProbeRegister uint8
	EventRegister uint8
}

// Responder answers register-addressed reads and writes from a bus master.
// Receive and Respond run in bus context and never block.
type Responder struct {
	q      Drainer
	probe  uint8
	events uint8
	log    *logx.Logger

	sel      atomic.Uint32 // selected register
	scratchN atomic.Uint32
	scratch  [ScratchSize]byte

	reply []byte // reused for every read

	reads  atomic.Uint32 // event-register reads served
	served atomic.Uint32 // event bytes handed to the master
}

func New(q Drainer, cfg Config, log *logx.Logger) *Responder {
	n := q.Cap()
	if n < 1 {
		n = 1
	}
	r := &Responder{
		q:      q,
		probe:  cfg.ProbeRegister,
		events: cfg.EventRegister,
		log:    log,
		reply:  make([]byte, n),
	}
	r.sel.Store(uint32(cfg.ProbeRegister))
	return r
}

// Receive handles the select phase: p[0] becomes the selected register and
// any further bytes are parked in scratch and otherwise ignored. An empty
// write leaves the selection as it was.
func (r *Responder) Receive(p []byte) {
	if len(p) == 0 {
		return
	}
	r.sel.Store(uint32(p[0]))
	n := copy(r.scratch[:], p[1:])
	r.scratchN.Store(uint32(n))
}

// Respond handles the read phase for the selected register. The returned
// slice is only valid until the next call.
func (r *Responder) Respond() []byte {
	switch uint8(r.sel.Load()) {
	case r.events:
		n := r.q.Drain(r.reply)
		r.reads.Add(1)
		r.served.Add(uint32(n))
		return r.reply[:n]
	default:
		// The probe register and unknown registers both read as one 0x00.
		r.reply[0] = placeholder
		return r.reply[:1]
	}
}

// Registers returns the probe and event register numbers in use.
func (r *Responder) Registers() (probe, events uint8) { return r.probe, r.events }

// Selected returns the currently selected register.
func (r *Responder) Selected() uint8 { return uint8(r.sel.Load()) }

// Scratch copies the trailing bytes of the last write into dst.
func (r *Responder) Scratch(dst []byte) int {
	return copy(dst, r.scratch[:r.scratchN.Load()])
}

// Reads returns how many event-register reads have been served.
func (r *Responder) Reads() uint32 { return r.reads.Load() }

// Served returns the total number of event bytes handed to the master.
func (r *Responder) Served() uint32 { return r.served.Load() }

// Serve listens on addr and answers transactions until the target reports an
// error or ctx ends. There is no recovery from a wedged bus: the error is
// returned to the caller.
func (r *Responder) Serve(ctx context.Context, t halcore.Target, addr uint16) error {
	if err := t.Listen(addr); err != nil {
		return errcode.Wrap(errcode.BusError, "listen", err)
	}
	r.log.Info("listening", "addr", uint8(addr))

	var buf [1 + ScratchSize]byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		evt, n, err := t.WaitForEvent(buf[:])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errcode.Wrap(errcode.BusError, "serve", err)
		}
		switch evt {
		case halcore.TargetReceive:
			r.Receive(buf[:n])
		case halcore.TargetRequest:
			out := r.Respond()
			if err := t.Reply(out); err != nil {
				r.log.Warn("reply failed", "reg", r.Selected(), "err", err)
			}
		case halcore.TargetFinish:
			// nothing to do
		default:
			r.log.Debug("ignored", "evt", evt)
		}
	}
}
