//go:build linux && !tinygo

// Command kbdprobe polls a keypad controller from a Linux host (for example
// a Raspberry Pi) and prints key events, one per line:
//
//	kbdprobe -bus 1 -addr 0x34 -interval 20ms
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"keymatrix-go/drivers/kbdctl"
	"keymatrix-go/types"
	"keymatrix-go/x/logx"
)

func main() {
	busName := flag.String("bus", "", "I2C bus name or number (default: first available)")
	addr := flag.Uint("addr", kbdctl.Address, "controller address")
	interval := flag.Duration("interval", 20*time.Millisecond, "poll interval")
	capacity := flag.Int("capacity", kbdctl.DefaultCapacity, "controller FIFO size in bytes")
	once := flag.Bool("once", false, "probe, read once and exit")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	log := logx.New(os.Stderr, "kbdprobe", logx.ParseLevel(*level))

	if _, err := host.Init(); err != nil {
		log.Error("host init", "err", err)
		os.Exit(1)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Error("open bus", "bus", *busName, "err", err)
		os.Exit(1)
	}
	defer bus.Close()

	dev := kbdctl.New(bus)
	dev.Configure(kbdctl.Config{Address: uint16(*addr), Capacity: *capacity})
	if err := dev.Probe(); err != nil {
		log.Error("probe", "addr", uint8(*addr), "err", err)
		os.Exit(1)
	}
	log.Info("found controller", "bus", bus.String(), "addr", uint8(*addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	evs := make([]types.KeyEvent, *capacity/types.EventBytes)
	tick := time.NewTicker(*interval)
	defer tick.Stop()
	line := make([]byte, 0, 32)
	for {
		n, err := dev.ReadEvents(evs)
		if err != nil {
			log.Warn("read", "err", err)
		}
		for _, e := range evs[:n] {
			line = append(line[:0], "key "...)
			line = strconv.AppendUint(line, uint64(e.Index), 10)
			if e.Pressed {
				line = append(line, " press\n"...)
			} else {
				line = append(line, " release\n"...)
			}
			os.Stdout.Write(line)
		}
		if *once {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}
