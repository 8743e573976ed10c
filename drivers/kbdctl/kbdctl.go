// Package kbdctl is a bus-master driver for the keymatrix I2C keypad
// controller.
//
// Every read of KEY_EVENT_A empties the controller's whole FIFO, so the
// driver always clocks Capacity bytes and decodes up to the first idle byte:
//
//	d := kbdctl.New(bus)
//	d.Configure(kbdctl.Config{})
//	n, err := d.ReadEvents(evs[:])
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package kbdctl

import (
	"errors"

	"tinygo.org/x/drivers"

	"keymatrix-go/types"
)

// Errors returned by the driver.
var (
	ErrProtocol    = errors.New("kbdctl: protocol error")
	ErrShortBuffer = errors.New("kbdctl: events lost to a short buffer")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x34 if zero.
	Address uint16
	// ProbeRegister and EventRegister default to CFG and KEY_EVENT_A.
	ProbeRegister uint8
	EventRegister uint8
	// Capacity is the controller's FIFO size in bytes. Default 16.
	Capacity int
}

// Device wraps an I2C connection to a keypad controller.
type Device struct {
	bus     drivers.I2C
	Address uint16

	probe  uint8
	events uint8
	buf    []byte
	pend   []types.KeyEvent
}

// New creates a new controller connection. The I2C bus must already be
// configured. This only creates the Device object; it does not touch the bus.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure applies cfg. It does not touch the bus.
func (d *Device) Configure(cfg Config) {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	d.probe = cfg.ProbeRegister
	if d.probe == 0 {
		d.probe = CFG
	}
	d.events = cfg.EventRegister
	if d.events == 0 {
		d.events = KEY_EVENT_A
	}
	if cfg.Capacity < types.EventBytes {
		cfg.Capacity = DefaultCapacity
	}
	d.buf = make([]byte, cfg.Capacity)
	d.pend = make([]types.KeyEvent, cfg.Capacity/types.EventBytes)
}

// Probe checks that a controller answers at Address.
func (d *Device) Probe() error {
	d.ensure()
	data := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{d.probe}, data); err != nil {
		return err
	}
	if data[0] != 0x00 {
		return ErrProtocol
	}
	return nil
}

// ReadEvents drains the controller's FIFO into dst, oldest first, and
// returns how many events were written. If the FIFO held more events than
// dst can take, the extra ones are discarded and ErrShortBuffer is returned.
func (d *Device) ReadEvents(dst []types.KeyEvent) (int, error) {
	d.ensure()
	if err := d.bus.Tx(d.Address, []byte{d.events}, d.buf); err != nil {
		return 0, err
	}
	total := types.DecodeEvents(d.buf, d.pend)
	n := copy(dst, d.pend[:total])
	if n < total {
		return n, ErrShortBuffer
	}
	return n, nil
}

func (d *Device) ensure() {
	if d.buf == nil {
		d.Configure(Config{Address: d.Address})
	}
}
