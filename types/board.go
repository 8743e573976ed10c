package types

// KeypadPlan wires one keypad controller to GPIO numbers. It carries no
// timing; operating parameters live in the service config.
type KeypadPlan struct {
	Name string `yaml:"name"`

	// Rows are driven, Cols are read. Key index = row*len(Cols) + col.
	Rows []int `yaml:"rows"`
	Cols []int `yaml:"cols"`

	// WakeLines are edge-interrupt inputs tied to column lines. A wake line
	// may share its GPIO with the column it watches.
	WakeLines []int `yaml:"wake_lines"`

	// Indicator is an optional output used in indicator mode; -1 for none.
	Indicator int `yaml:"indicator"`

	Bus     I2CPlan  `yaml:"bus"`
	Console UARTPlan `yaml:"console"`
}

type I2CPlan struct {
	ID  string `yaml:"id"`  // e.g. "i2c0"
	SDA int    `yaml:"sda"` // GPIO number
	SCL int    `yaml:"scl"` // GPIO number
}

type UARTPlan struct {
	ID   string `yaml:"id"` // e.g. "uart0"; empty disables the console
	TX   int    `yaml:"tx"`
	RX   int    `yaml:"rx"`
	Baud uint32 `yaml:"baud"`
}

// Keys returns rows*cols.
func (p KeypadPlan) Keys() int { return len(p.Rows) * len(p.Cols) }
