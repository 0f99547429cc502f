package runtime

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunState_StopsExactlyOnce(t *testing.T) {
	req := require.New(t)
	state := NewRunState()
	req.True(state.IsRunning())

	var flips atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if state.Stop() {
				flips.Add(1)
			}
		}()
	}
	wg.Wait()

	req.Equal(int32(1), flips.Load())
	req.False(state.IsRunning())
	select {
	case <-state.Done():
	default:
		req.Fail("Done should be closed")
	}
}
