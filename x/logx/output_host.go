//go:build !(rp2040 || rp2350)

package logx

import (
	"io"
	"os"
)

// DefaultOutput is used when New is given a nil writer.
var DefaultOutput io.Writer = os.Stderr
