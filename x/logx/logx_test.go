package logx

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "keypad", LevelDebug)
	l.Info("served", "reg", uint8(0x04), "n", 4, "data", []byte{5, 0x80}, "ok", true)
	want := "[keypad] INFO served reg=0x04 n=4 data=[05 80] ok=true\n"
	if buf.String() != want {
		t.Fatalf("got %q\nwant %q", buf.String(), want)
	}
}

func TestLevelFilteringAndWith(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, "main", LevelInfo)
	child := root.With("power")

	child.Debug("hidden")
	child.Warn("hold", "for", 20*time.Millisecond)
	root.Error("bus", "err", errors.New("nack"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked: %q", out)
	}
	if !strings.Contains(out, "[power] WARN hold for=20000us\n") {
		t.Fatalf("missing child line: %q", out)
	}
	if !strings.Contains(out, "[main] ERROR bus err=nack\n") {
		t.Fatalf("missing root line: %q", out)
	}

	root.SetLevel(LevelDebug)
	if !child.Enabled(LevelDebug) {
		t.Fatal("level change should be shared with derived loggers")
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	l.Info("nothing", "k", 1)
	if l.With("x") != nil || l.Enabled(LevelError) {
		t.Fatal("nil logger should stay nil and disabled")
	}
}

func TestOddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", LevelInfo).Info("odd", "k")
	if buf.String() != "INFO odd k=<missing>\n" {
		t.Fatalf("got %q", buf.String())
	}
	if ParseLevel("warn") != LevelWarn || ParseLevel("bogus") != LevelInfo {
		t.Fatal("ParseLevel mismatch")
	}
}
