package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to OK")
	}
	if Of(PinInUse) != PinInUse {
		t.Fatal("bare code should map to itself")
	}
	cause := errors.New("nack")
	err := Wrap(BusError, "serve", cause)
	if Of(err) != BusError {
		t.Fatalf("wrapped code = %q", Of(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("E should unwrap to its cause")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("foreign error should map to Error")
	}
}

func TestOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("open: %w", &E{C: UnknownBus, Op: "plan", Msg: "i2c2"})
	if Of(err) != UnknownBus {
		t.Fatalf("wrapped E code = %q", Of(err))
	}
	if Of(fmt.Errorf("listen: %w", Busy)) != Busy {
		t.Fatal("wrapped bare code lost")
	}
}

func TestEString(t *testing.T) {
	e := &E{C: InvalidParams, Op: "config", Msg: "rows*cols > 64"}
	if e.Error() != "config: invalid_params: rows*cols > 64" {
		t.Fatalf("got %q", e.Error())
	}
	if (&E{C: Timeout}).Error() != "timeout" {
		t.Fatal("bare E should print its code")
	}
}
