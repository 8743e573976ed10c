//go:build !(rp2040 || rp2350)

package critical

import "sync"

// Host builds have no interrupt mask; a process-wide mutex gives the same
// mutual exclusion between goroutines standing in for handlers.
var mu sync.Mutex

// State is unused on host builds.
type State struct{}

// Enter begins a critical section.
func Enter() State {
	mu.Lock()
	return State{}
}

// Exit ends the critical section begun by Enter.
func Exit(State) { mu.Unlock() }
