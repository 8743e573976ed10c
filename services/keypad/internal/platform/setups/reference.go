package setups

import "keymatrix-go/types"

// Reference is the 4x3 telephone keypad on a Pico:
//
//	rows GP10..GP13 driven, cols GP18..GP20 read,
//	wake lines on cols 0 and 1, host bus on i2c0 GP4/GP5,
//	console on uart0 GP0/GP1, indicator on the onboard LED.
var Reference = types.KeypadPlan{
	Name:      "pico_keypad_4x3",
	Rows:      []int{10, 11, 12, 13},
	Cols:      []int{18, 19, 20},
	WakeLines: []int{18, 19},
	Indicator: 25,
	Bus:       types.I2CPlan{ID: "i2c0", SDA: 4, SCL: 5},
	Console:   types.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115200},
}
