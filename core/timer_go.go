//go:build !tinygo

package core

import "sync/atomic"

var systemTicks atomic.Uint32

// getSystemTicks returns the simulated system ticks
func getSystemTicks() uint32 {
	return systemTicks.Load()
}

// setSystemTicks sets the simulated system ticks
func setSystemTicks(ticks uint32) {
	systemTicks.Store(ticks)
}
