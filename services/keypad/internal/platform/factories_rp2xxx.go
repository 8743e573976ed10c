//go:build rp2040 || rp2350

package platform

import (
	"device/rp"
	"io"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/types"
)

// Constrain to RP2's user GPIOs (GP0..GP28).
const rp2MaxPin = 28

// Open configures pins and the target-mode bus named by p.
func Open(p types.KeypadPlan) (Resources, error) {
	if err := CheckPlan(p, 0, rp2MaxPin); err != nil {
		return Resources{}, err
	}
	pins := DefaultPinFactory()
	var res Resources
	for _, n := range p.Rows {
		g, _ := pins.ByNumber(n)
		res.Rows = append(res.Rows, g)
	}
	for _, n := range p.Cols {
		g, _ := pins.ByNumber(n)
		res.Cols = append(res.Cols, g)
	}
	for _, n := range p.WakeLines {
		g, _ := pins.ByNumber(n)
		res.Wake = append(res.Wake, g.(halcore.IRQPin))
	}
	if p.Indicator >= 0 {
		res.Indicator, _ = pins.ByNumber(p.Indicator)
	}
	if p.Bus.ID != "" {
		f, err := DefaultTargetFactory(p.Bus)
		t, err := targetFor(f, err, p.Bus)
		if err != nil {
			return Resources{}, err
		}
		res.Target = t
	}
	res.Gate = &rp2Gate{}
	return res, nil
}

// Console returns a UART writer for log output, or io.Discard when the plan
// has no console.
func Console(u types.UARTPlan) io.Writer {
	var hw *uartx.UART
	switch u.ID {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return io.Discard
	}
	// Defaults inside uartx apply if zero.
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: u.Baud,
		TX:       machine.Pin(u.TX),
		RX:       machine.Pin(u.RX),
	})
	return hw
}

// ---- I²C target implementation ----

// DefaultTargetFactory configures the controller named by plan in target mode.
// An unknown controller id yields an empty factory; a configure failure is
// returned alongside it.
func DefaultTargetFactory(plan types.I2CPlan) (halcore.TargetFactory, error) {
	f := &rp2TargetFactory{targets: make(map[string]halcore.Target, 1)}
	var hw *machine.I2C
	switch plan.ID {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return f, nil
	}
	if err := hw.Configure(machine.I2CConfig{
		Mode: machine.I2CModeTarget,
		SDA:  machine.Pin(plan.SDA),
		SCL:  machine.Pin(plan.SCL),
	}); err != nil {
		return f, err
	}
	f.targets[plan.ID] = &rp2Target{i2c: hw}
	return f, nil
}

type rp2TargetFactory struct {
	targets map[string]halcore.Target
}

func (f *rp2TargetFactory) TargetByID(id string) (halcore.Target, bool) {
	t, ok := f.targets[id]
	return t, ok
}

type rp2Target struct {
	i2c *machine.I2C
}

func (t *rp2Target) Listen(addr uint16) error { return t.i2c.Listen(addr) }

func (t *rp2Target) WaitForEvent(buf []byte) (halcore.TargetEvent, int, error) {
	evt, n, err := t.i2c.WaitForEvent(buf)
	if err != nil {
		return 0, 0, err
	}
	switch evt {
	case machine.I2CReceive:
		return halcore.TargetReceive, n, nil
	case machine.I2CRequest:
		return halcore.TargetRequest, 0, nil
	default:
		return halcore.TargetFinish, 0, nil
	}
}

func (t *rp2Target) Reply(buf []byte) error { return t.i2c.Reply(buf) }

// ---- GPIO implementation (includes IRQ support) ----

// DefaultPinFactory maps logical numbers directly to machine.Pin(n). This
// matches Pico/Pico 2 GP numbering.
func DefaultPinFactory() halcore.PinFactory { return rp2PinFactory{} }

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 || n > rp2MaxPin {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	var mode machine.PinMode
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Number() int    { return r.n }

// SetIRQ attaches handler on the requested edges. It runs in interrupt context.
func (r *rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e halcore.Edge) machine.PinChange {
	switch e {
	case halcore.EdgeRising:
		return machine.PinRising
	case halcore.EdgeFalling:
		return machine.PinFalling
	case halcore.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}

// ---- Power gate ----

// rp2Gate powers the ADC down across sleep and restores its prior state.
type rp2Gate struct {
	adcOn bool
}

func (g *rp2Gate) Suspend() {
	g.adcOn = rp.ADC.CS.HasBits(rp.ADC_CS_EN)
	rp.ADC.CS.ClearBits(rp.ADC_CS_EN)
}

func (g *rp2Gate) Resume() {
	if g.adcOn {
		rp.ADC.CS.SetBits(rp.ADC_CS_EN)
	}
}
