//go:build pico && keypad_4x4

package setups

import "keymatrix-go/types"

// Selected is a 4x4 membrane pad with dedicated wake jumpers on GP21/GP22
// (strapped to cols 0 and 1).
var Selected = types.KeypadPlan{
	Name:      "pico_keypad_4x4",
	Rows:      []int{10, 11, 12, 13},
	Cols:      []int{18, 19, 20, 26},
	WakeLines: []int{21, 22},
	Indicator: 25,
	Bus:       types.I2CPlan{ID: "i2c0", SDA: 4, SCL: 5},
	Console:   types.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115200},
}
