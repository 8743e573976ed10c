package platform

import (
	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/types"
	"keymatrix-go/x/conv"
)

// Resources are the handles a keypad service is built from.
type Resources struct {
	Rows      []halcore.GPIOPin
	Cols      []halcore.GPIOPin
	Wake      []halcore.IRQPin
	Indicator halcore.GPIOPin // nil when the plan has none
	Target    halcore.Target
	Gate      halcore.PowerGate
}

// targetFor picks the plan's bus out of a configured factory. A configure
// failure keeps its cause as BusError; an id the factory lacks is UnknownBus.
func targetFor(f halcore.TargetFactory, configErr error, bus types.I2CPlan) (halcore.Target, error) {
	if configErr != nil {
		return nil, &errcode.E{C: errcode.BusError, Op: "configure", Msg: bus.ID, Err: configErr}
	}
	t, ok := f.TargetByID(bus.ID)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "plan", Msg: bus.ID}
	}
	return t, nil
}

// CheckPlan rejects pins outside [lo, hi] and pins claimed twice. A wake
// line may reuse the GPIO of a column; nothing else may be shared.
func CheckPlan(p types.KeypadPlan, lo, hi int) error {
	used := make(map[int]string, len(p.Rows)+len(p.Cols)+4)
	claim := func(n int, role string) error {
		if n < lo || n > hi {
			return &errcode.E{C: errcode.UnknownPin, Op: "plan", Msg: role + " " + gp(n)}
		}
		if prev, ok := used[n]; ok {
			return &errcode.E{C: errcode.PinInUse, Op: "plan", Msg: gp(n) + " " + prev + "/" + role}
		}
		used[n] = role
		return nil
	}
	for _, n := range p.Rows {
		if err := claim(n, "row"); err != nil {
			return err
		}
	}
	cols := make(map[int]bool, len(p.Cols))
	for _, n := range p.Cols {
		if err := claim(n, "col"); err != nil {
			return err
		}
		cols[n] = true
	}
	for _, n := range p.WakeLines {
		if cols[n] {
			continue
		}
		if err := claim(n, "wake"); err != nil {
			return err
		}
	}
	if p.Indicator >= 0 {
		if err := claim(p.Indicator, "indicator"); err != nil {
			return err
		}
	}
	if p.Bus.ID != "" {
		if err := claim(p.Bus.SDA, "sda"); err != nil {
			return err
		}
		if err := claim(p.Bus.SCL, "scl"); err != nil {
			return err
		}
	}
	if p.Console.ID != "" {
		if err := claim(p.Console.TX, "tx"); err != nil {
			return err
		}
		if err := claim(p.Console.RX, "rx"); err != nil {
			return err
		}
	}
	return nil
}

func gp(n int) string { return string(conv.AppendInt([]byte("GP"), int64(n))) }
