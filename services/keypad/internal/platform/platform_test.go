//go:build !(rp2040 || rp2350)

package platform

import (
	"errors"
	"testing"

	"keymatrix-go/errcode"
	"keymatrix-go/services/keypad/internal/halcore"
	"keymatrix-go/types"
)

func plan4x3() types.KeypadPlan {
	return types.KeypadPlan{
		Rows:      []int{10, 11, 12, 13},
		Cols:      []int{18, 19, 20},
		WakeLines: []int{18, 19},
		Indicator: 25,
		Bus:       types.I2CPlan{ID: "i2c0", SDA: 4, SCL: 5},
		Console:   types.UARTPlan{ID: "uart0", TX: 0, RX: 1},
	}
}

type mapTargets map[string]halcore.Target

func (m mapTargets) TargetByID(id string) (halcore.Target, bool) {
	t, ok := m[id]
	return t, ok
}

func TestTargetForKeepsConfigureCause(t *testing.T) {
	bus := types.I2CPlan{ID: "i2c0", SDA: 4, SCL: 5}
	cause := errors.New("pins not i2c capable")
	_, err := targetFor(mapTargets{}, cause, bus)
	if errcode.Of(err) != errcode.BusError || !errors.Is(err, cause) {
		t.Fatalf("configure failure = %v", err)
	}

	if _, err := targetFor(mapTargets{}, nil, bus); errcode.Of(err) != errcode.UnknownBus {
		t.Fatalf("missing bus = %v", err)
	}

	want := NewFakeTarget()
	got, err := targetFor(mapTargets{"i2c0": want}, nil, bus)
	if err != nil || got != want {
		t.Fatalf("targetFor = %v, %v", got, err)
	}
}

func TestCheckPlanAcceptsWakeOnColumn(t *testing.T) {
	if err := CheckPlan(plan4x3(), 0, 28); err != nil {
		t.Fatalf("CheckPlan: %v", err)
	}
}

func TestCheckPlanRejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*types.KeypadPlan)
		want errcode.Code
	}{
		{"row reused as col", func(p *types.KeypadPlan) { p.Cols[0] = 10 }, errcode.PinInUse},
		{"wake on row", func(p *types.KeypadPlan) { p.WakeLines[1] = 11 }, errcode.PinInUse},
		{"indicator on bus", func(p *types.KeypadPlan) { p.Indicator = 4 }, errcode.PinInUse},
		{"console on row", func(p *types.KeypadPlan) { p.Console.TX = 12 }, errcode.PinInUse},
		{"out of range", func(p *types.KeypadPlan) { p.Rows[0] = 29 }, errcode.UnknownPin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := plan4x3()
			tc.mut(&p)
			err := CheckPlan(p, 0, 28)
			if got := errcode.Of(err); got != tc.want {
				t.Fatalf("code = %q (%v), want %q", got, err, tc.want)
			}
		})
	}
}

func TestCheckPlanIgnoresAbsentRoles(t *testing.T) {
	p := plan4x3()
	p.Indicator = -1
	p.Console = types.UARTPlan{}
	p.Console.TX = 10 // not claimed without an id
	if err := CheckPlan(p, 0, 28); err != nil {
		t.Fatalf("CheckPlan: %v", err)
	}
}

func TestSimColumnFollowsDrivenRow(t *testing.T) {
	m := NewSimMatrix(plan4x3())
	rows, cols := m.Rows(), m.Cols()
	for _, r := range rows {
		_ = r.ConfigureOutput(true)
	}
	m.Press(4) // row 1, col 1

	if !cols[1].Get() {
		t.Fatal("column low with all rows idle")
	}
	rows[0].Set(false)
	if !cols[1].Get() {
		t.Fatal("column low with another row driven")
	}
	rows[0].Set(true)
	rows[1].Set(false)
	if cols[1].Get() {
		t.Fatal("column high with its row driven and key closed")
	}
	if !cols[0].Get() || !cols[2].Get() {
		t.Fatal("neighbouring columns pulled low")
	}
	m.Release(4)
	if !cols[1].Get() {
		t.Fatal("column low after release")
	}
}

func TestSimUndrivenRowDoesNotPull(t *testing.T) {
	m := NewSimMatrix(plan4x3())
	m.Press(0)
	if !m.Cols()[0].Get() {
		t.Fatal("input-mode row pulled the column low")
	}
}

func TestSimWakeLineRaisesIRQ(t *testing.T) {
	p := plan4x3()
	m := NewSimMatrix(p)
	for _, r := range m.Rows() {
		_ = r.ConfigureOutput(false) // armed for sleep
	}
	fired := make([]int, len(p.WakeLines))
	for i, w := range m.Wake() {
		i := i
		_ = w.SetIRQ(halcore.EdgeBoth, func() { fired[i]++ })
	}

	m.Press(2) // col 2 has no wake line
	if fired[0]+fired[1] != 0 {
		t.Fatalf("fired = %v, want none", fired)
	}
	m.Press(1) // col 1 -> wake line 1
	if fired[1] != 1 || fired[0] != 0 {
		t.Fatalf("fired = %v after press", fired)
	}
	if m.WakePin(1).Get() {
		t.Fatal("wake line high while its column is pulled")
	}
	m.Release(1)
	if fired[1] != 2 {
		t.Fatalf("fired = %v after release", fired)
	}
}

func TestWakeColumnFallsBackToPosition(t *testing.T) {
	p := plan4x3()
	p.WakeLines = []int{21, 22}
	if wakeColumn(p, 0) != 0 || wakeColumn(p, 1) != 1 {
		t.Fatal("jumpered wake lines should watch cols 0 and 1")
	}
	p.WakeLines = []int{20}
	if wakeColumn(p, 0) != 2 {
		t.Fatal("wake line on GP20 should watch col 2")
	}
}

func TestFakeTargetNacksUntilListening(t *testing.T) {
	ft := NewFakeTarget()
	defer ft.Close()
	err := ft.Tx(0x34, []byte{0x04}, nil)
	if errcode.Of(err) != errcode.BusError {
		t.Fatalf("err = %v, want bus_error", err)
	}
	_ = ft.Listen(0x34)
	if err := ft.Tx(0x35, []byte{0x04}, nil); errcode.Of(err) != errcode.BusError {
		t.Fatalf("wrong address: err = %v", err)
	}
}

func TestFakeTargetTransaction(t *testing.T) {
	ft := NewFakeTarget()
	defer ft.Close()
	_ = ft.Listen(0x34)

	var got []byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 8)
		for {
			evt, n, err := ft.WaitForEvent(buf)
			if err != nil {
				return
			}
			switch evt {
			case halcore.TargetReceive:
				got = append(got, buf[:n]...)
			case halcore.TargetRequest:
				_ = ft.Reply([]byte{0x05, 0x80})
			case halcore.TargetFinish:
				return
			}
		}
	}()

	r := make([]byte, 4)
	if err := ft.Tx(0x34, []byte{0x04}, r); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	<-done
	if len(got) != 1 || got[0] != 0x04 {
		t.Fatalf("target saw %v", got)
	}
	want := []byte{0x05, 0x80, types.IdleByte, types.IdleByte}
	for i := range want {
		if r[i] != want[i] {
			t.Fatalf("read = % x, want % x", r, want)
		}
	}
}

func TestFakeTargetCloseUnblocks(t *testing.T) {
	ft := NewFakeTarget()
	ft.Close()
	if _, _, err := ft.WaitForEvent(nil); !errors.Is(err, errTargetClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenSimWiresIndicator(t *testing.T) {
	res, sim, err := OpenSim(plan4x3())
	if err != nil {
		t.Fatalf("OpenSim: %v", err)
	}
	if len(res.Rows) != 4 || len(res.Cols) != 3 || len(res.Wake) != 2 {
		t.Fatalf("resources = %d/%d/%d", len(res.Rows), len(res.Cols), len(res.Wake))
	}
	if sim.Indicator == nil || res.Indicator == nil {
		t.Fatal("indicator missing")
	}

	p := plan4x3()
	p.Indicator = -1
	res, sim, err = OpenSim(p)
	if err != nil || res.Indicator != nil || sim.Indicator != nil {
		t.Fatalf("indicator should be absent: %v", err)
	}

	p.WakeLines = nil
	if _, _, err := OpenSim(p); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("no wake lines: err = %v", err)
	}
}

func TestFakeGate(t *testing.T) {
	var g FakeGate
	g.Suspend()
	if !g.Suspended() || g.Suspends() != 1 {
		t.Fatal("suspend not recorded")
	}
	g.Resume()
	if g.Suspended() {
		t.Fatal("still suspended")
	}
}
