//go:build !(pico && keypad_4x4)

package setups

var Selected = Reference
