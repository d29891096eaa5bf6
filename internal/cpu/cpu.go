// Package cpu binds worker goroutines to dedicated OS threads.
package cpu

import "runtime"

func wrapCPU(cpuID int) int {
	n := runtime.NumCPU()
	cpuID %= n
	if cpuID < 0 {
		cpuID += n
	}
	return cpuID
}
