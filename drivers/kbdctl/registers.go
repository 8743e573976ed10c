package kbdctl

// I2C address.
const Address = 0x34

// Registers, laid out like a TCA8418.
const (
	CFG         = 0x01 // presence probe; reads 0x00
	KEY_EVENT_A = 0x04 // event FIFO; a read drains it
)

// Default FIFO size in bytes (two per event).
const DefaultCapacity = 16
