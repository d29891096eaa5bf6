//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// Out-of-range ids wrap around the number of logical CPUs.
func pinToCore(cpuID int) (int, error) {
	cpuID = wrapCPU(cpuID)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}
	return cpuID, nil
}

// SetupWorkerAffinity locks the calling goroutine to its own OS thread and,
// if pin is set, binds that thread to CPU workerID modulo the CPU count.
// Pinning failures are reported but leave the thread locked.
// The returned function unlocks the thread and should be deferred.
func SetupWorkerAffinity(workerID int, pin bool) (func(), error) {
	runtime.LockOSThread()
	release := func() {
		runtime.UnlockOSThread()
	}

	if !pin {
		return release, nil
	}
	if _, err := pinToCore(workerID); err != nil {
		return release, err
	}
	return release, nil
}
