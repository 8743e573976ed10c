package timex

import (
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManual(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Now=%v want %v", c.Now(), start)
	}
	c.Advance(15 * time.Millisecond)
	if got := Since(c, start); got != 15*time.Millisecond {
		t.Fatalf("Since=%v want 15ms", got)
	}
}

func TestSystemClockMoves(t *testing.T) {
	var c Clock = System{}
	a := c.Now()
	time.Sleep(time.Millisecond)
	if !c.Now().After(a) {
		t.Fatal("system clock did not advance")
	}
}
