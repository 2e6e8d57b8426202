//go:build !tinygo

package core

// State is a placeholder for interrupt state on regular Go
type State uintptr

// DisableInterrupts is a no-op on regular Go. Off target the scheduler and
// the main loop share one goroutine, so there is nothing to mask.
func DisableInterrupts() State {
	return 0
}

// RestoreInterrupts is a no-op on regular Go
func RestoreInterrupts(state State) {
}
