package frontend

import "sync/atomic"

// maxTurbo is the highest fast-forward multiplier the hotkey reaches.
const maxTurbo = 3

// TurboState is the fast-forward multiplier, set from the ebiten thread
// and read by the loop once per iteration.
type TurboState struct {
	multiplier atomic.Int32
}

// CycleMultiplier steps 1x, 2x ... maxTurbo and back to 1x, returning the
// new multiplier.
func (ts *TurboState) CycleMultiplier() int {
	for {
		cur := ts.multiplier.Load()
		next := cur + 1
		if cur < 1 {
			next = 2
		} else if next > maxTurbo {
			next = 1
		}
		if ts.multiplier.CompareAndSwap(cur, next) {
			return int(next)
		}
	}
}

// Set forces a multiplier; values below 1 mean normal speed.
func (ts *TurboState) Set(m int) {
	ts.multiplier.Store(int32(max(m, 1)))
}

// Read returns the current multiplier, at least 1.
func (ts *TurboState) Read() int {
	return max(int(ts.multiplier.Load()), 1)
}
