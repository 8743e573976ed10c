package types

// Wire encoding of one key event: [index, status].
const (
	StatusPress   byte = 0x80
	StatusRelease byte = 0x00

	// EventBytes is the encoded size of one KeyEvent.
	EventBytes = 2

	// IdleByte is what a bus master reads past the end of a short reply.
	// It is never a valid key index.
	IdleByte byte = 0xFF

	// MaxKeys bounds rows*cols.
	MaxKeys = 64
)

// KeyEvent is one observed switch transition.
type KeyEvent struct {
	Index   uint8
	Pressed bool
}

// Status returns the wire status byte.
func (e KeyEvent) Status() byte {
	if e.Pressed {
		return StatusPress
	}
	return StatusRelease
}

// Encode returns the two wire bytes for e.
func (e KeyEvent) Encode() [EventBytes]byte { return [EventBytes]byte{e.Index, e.Status()} }

// KeyIndex maps a matrix position to its row-major index.
func KeyIndex(row, col, cols int) uint8 { return uint8(row*cols + col) }

// DecodeEvents parses wire pairs from p into dst and returns how many were
// written. Parsing stops at an IdleByte index, a dangling odd byte, or when
// dst is full.
func DecodeEvents(p []byte, dst []KeyEvent) int {
	n := 0
	for i := 0; i+1 < len(p) && n < len(dst); i += EventBytes {
		if p[i] == IdleByte {
			break
		}
		dst[n] = KeyEvent{Index: p[i], Pressed: p[i+1]&StatusPress != 0}
		n++
	}
	return n
}

// SleepState is the power state of the controller.
type SleepState uint8

const (
	Awake SleepState = iota
	Asleep
)

func (s SleepState) String() string {
	if s == Asleep {
		return "asleep"
	}
	return "awake"
}
