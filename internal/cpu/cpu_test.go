package cpu

import (
	"runtime"
	"testing"
)

func TestWrapCPU(t *testing.T) {
	n := runtime.NumCPU()
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{n, 0},
		{n + 1, 1 % n},
		{-1, n - 1},
	}
	for _, tt := range tests {
		if got := wrapCPU(tt.in); got != tt.want {
			t.Errorf("wrapCPU(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSetupWorkerAffinity_Unpinned(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		release, err := SetupWorkerAffinity(0, false)
		defer release()
		done <- err
	}()

	if err := <-done; err != nil {
		t.Fatalf("unpinned setup failed: %v", err)
	}
}
