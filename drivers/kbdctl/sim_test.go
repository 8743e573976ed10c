//go:build !(rp2040 || rp2350)

package kbdctl_test

import (
	"context"
	"testing"
	"time"

	"keymatrix-go/drivers/kbdctl"
	"keymatrix-go/services/keypad"
	"keymatrix-go/types"
)

func TestAgainstSimulatedController(t *testing.T) {
	cfg := keypad.DefaultConfig()
	cfg.Settle = 0
	svc, sim, err := keypad.NewSim(cfg, nil)
	if err != nil {
		t.Fatalf("NewSim: %v", err)
	}
	defer svc.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()
	select {
	case <-sim.Ready():
	case <-time.After(time.Second):
		t.Fatal("controller never listened")
	}

	d := kbdctl.New(sim.Bus())
	d.Configure(kbdctl.Config{Capacity: cfg.QueueCapacity})
	if err := d.Probe(); err != nil {
		t.Fatalf("Probe: %v", err)
	}

	sim.Press(5)
	if err := svc.Step(ctx); err != nil {
		t.Fatal(err)
	}
	sim.Release(5)
	if err := svc.Step(ctx); err != nil {
		t.Fatal(err)
	}

	var evs [8]types.KeyEvent
	n, err := d.ReadEvents(evs[:])
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if n != 2 || evs[0] != (types.KeyEvent{Index: 5, Pressed: true}) || evs[1] != (types.KeyEvent{Index: 5}) {
		t.Fatalf("events = %+v", evs[:n])
	}
	if n, _ := d.ReadEvents(evs[:]); n != 0 {
		t.Fatalf("second read returned %d events", n)
	}
}

func TestProbeWrongAddress(t *testing.T) {
	cfg := keypad.DefaultConfig()
	svc, sim, err := keypad.NewSim(cfg, nil)
	if err != nil {
		t.Fatalf("NewSim: %v", err)
	}
	defer svc.Close()
	defer sim.Close()
	d := kbdctl.New(sim.Bus())
	d.Configure(kbdctl.Config{Address: 0x20})
	if err := d.Probe(); err == nil {
		t.Fatal("probe at an empty address succeeded")
	}
}
