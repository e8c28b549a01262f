package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestRunExclusive_AtMostOneLive issues a random burst of commands for one
// key and checks that no two factories are ever inside their body at once.
func TestRunExclusive_AtMostOneLive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "commands")
		gaps := rapid.SliceOfN(rapid.IntRange(0, 3), n, n).Draw(rt, "gap_ms")
		work := rapid.SliceOfN(rapid.IntRange(0, 5), n, n).Draw(rt, "work_ms")
		ignoreCancel := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "ignore_cancel")

		c := New[string]()

		var live, maxLive atomic.Int32
		var completed atomic.Int32
		states := make([]State, n)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			time.Sleep(time.Duration(gaps[i]) * time.Millisecond)
			wg.Add(1)
			go func() {
				defer wg.Done()
				states[i] = c.RunExclusive(context.Background(), "chat-1", func(ctx context.Context) error {
					cur := live.Add(1)
					for {
						prev := maxLive.Load()
						if cur <= prev || maxLive.CompareAndSwap(prev, cur) {
							break
						}
					}
					defer live.Add(-1)

					timer := time.NewTimer(time.Duration(work[i]) * time.Millisecond)
					defer timer.Stop()
					if ignoreCancel[i] {
						<-timer.C
						completed.Add(1)
						return nil
					}
					select {
					case <-timer.C:
						completed.Add(1)
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				}, nil)
			}()
		}
		wg.Wait()

		if got := maxLive.Load(); got > 1 {
			rt.Fatalf("%d commands were live at once", got)
		}
		for i, s := range states {
			if !s.Terminal() {
				rt.Fatalf("command %d returned in non-terminal state %s", i, s)
			}
		}
		if c.IsRunning("chat-1") {
			rt.Fatalf("slot still running after every call returned")
		}
		var finished int32
		for _, s := range states {
			if s == StateCompleted {
				finished++
			}
		}
		if finished != completed.Load() {
			rt.Fatalf("completed states %d != completed bodies %d", finished, completed.Load())
		}
	})
}
