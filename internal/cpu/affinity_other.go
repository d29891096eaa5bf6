//go:build !linux && !windows

package cpu

import (
	"errors"
	"runtime"
)

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not available on this platform.
func SetupWorkerAffinity(workerID int, pin bool) (func(), error) {
	runtime.LockOSThread()
	release := func() {
		runtime.UnlockOSThread()
	}

	if pin {
		return release, errors.New("cpu pinning is not supported on " + runtime.GOOS)
	}
	return release, nil
}
