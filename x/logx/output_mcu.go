//go:build rp2040 || rp2350

package logx

import "io"

// DefaultOutput is used when New is given a nil writer.
// Set this from the platform bootstrap (e.g. a UART writer).
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
