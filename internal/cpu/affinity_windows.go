//go:build windows

package cpu

import (
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
func pinToCore(cpuID int) (uintptr, error) {
	cpuID = wrapCPU(cpuID)

	// Bit N = CPU N.
	mask := uintptr(1) << uint(cpuID)

	prevMask, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prevMask == 0 {
		return 0, err
	}
	return prevMask, nil
}

// SetupWorkerAffinity locks the calling goroutine to its own OS thread and,
// if pin is set, binds that thread to CPU workerID modulo the CPU count.
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
