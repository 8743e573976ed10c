// services/keypad/internal/halcore/types.go
package halcore

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// IRQPin extends GPIOPin with interrupts. Handlers run in interrupt context.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// ---- I²C target (peripheral mode) ----

// TargetEvent is what a bus master just did to us.
type TargetEvent uint8

const (
	// TargetReceive: master wrote bytes (register select + optional data).
	TargetReceive TargetEvent = iota + 1
	// TargetRequest: master is reading; answer with Reply.
	TargetRequest
	// TargetFinish: stop condition.
	TargetFinish
)

func (e TargetEvent) String() string {
	switch e {
	case TargetReceive:
		return "receive"
	case TargetRequest:
		return "request"
	case TargetFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Target is an I²C controller configured as a peripheral at one address.
// WaitForEvent blocks until the master addresses us; for TargetReceive the
// written bytes are copied into buf and their count returned.
type Target interface {
	Listen(addr uint16) error
	WaitForEvent(buf []byte) (TargetEvent, int, error)
	Reply(buf []byte) error
}

// TargetFactory injects configured target-mode buses by id.
type TargetFactory interface {
	TargetByID(id string) (Target, bool)
}

// ---- Power ----

// PowerGate switches nonessential on-chip subsystems off before deep sleep
// and back on after wake.
type PowerGate interface {
	Suspend()
	Resume()
}
