package types

import "testing"

func TestEncode(t *testing.T) {
	if got := (KeyEvent{Index: 5, Pressed: true}).Encode(); got != [2]byte{5, 0x80} {
		t.Fatalf("press encode = %v", got)
	}
	if got := (KeyEvent{Index: 5}).Encode(); got != [2]byte{5, 0x00} {
		t.Fatalf("release encode = %v", got)
	}
	if KeyIndex(1, 2, 3) != 5 {
		t.Fatal("row 1 col 2 of a 3-column matrix is key 5")
	}
}

func TestDecodeEventsStopsAtIdle(t *testing.T) {
	raw := []byte{5, 0x80, 5, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}
	var dst [8]KeyEvent
	n := DecodeEvents(raw, dst[:])
	if n != 2 {
		t.Fatalf("n=%d want 2", n)
	}
	if dst[0] != (KeyEvent{Index: 5, Pressed: true}) || dst[1] != (KeyEvent{Index: 5}) {
		t.Fatalf("decoded %+v", dst[:n])
	}
}

func TestDecodeEventsBounds(t *testing.T) {
	var one [1]KeyEvent
	if n := DecodeEvents([]byte{1, 0x80, 2, 0x80}, one[:]); n != 1 {
		t.Fatalf("dst capacity not honoured: n=%d", n)
	}
	if n := DecodeEvents([]byte{1}, one[:]); n != 0 {
		t.Fatalf("odd tail should be ignored: n=%d", n)
	}
	if Asleep.String() != "asleep" || Awake.String() != "awake" {
		t.Fatal("SleepState names")
	}
}
