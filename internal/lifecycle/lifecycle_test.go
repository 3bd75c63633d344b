package lifecycle

import (
	"sync"
	"testing"
)

func TestShuttingDown_Toggle(t *testing.T) {
	defer SetShuttingDown(false)

	for _, want := range []bool{false, true, true, false} {
		SetShuttingDown(want)
		if got := IsShuttingDown(); got != want {
			t.Errorf("IsShuttingDown() = %v after SetShuttingDown(%v)", got, want)
		}
	}
}

// TestShuttingDown_ConcurrentReaders covers the signal goroutine flipping the
// flag while /ready handlers read it.
func TestShuttingDown_ConcurrentReaders(t *testing.T) {
	SetShuttingDown(false)
	defer SetShuttingDown(false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = IsShuttingDown()
			}
		}()
	}
	SetShuttingDown(true)
	wg.Wait()

	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true)")
	}
}
