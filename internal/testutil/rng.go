package testutil

import "sync"

// ScriptedRNG replays a fixed list of draws for tests that need to steer
// random choices exactly.
//
// Each IntN(n) call returns the next scripted value modulo n. When the script
// is exhausted it wraps around to the beginning.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedRNG struct {
	mu     sync.Mutex
	script []int
	idx    int
	calls  int
}

// NewScriptedRNG creates an RNG that returns the given values in order.
// With an empty script every draw returns 0.
func NewScriptedRNG(script ...int) *ScriptedRNG {
	return &ScriptedRNG{script: script}
}

// IntN returns the next scripted value reduced into [0, n).
func (r *ScriptedRNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if n <= 0 {
		panic("ScriptedRNG: IntN called with n <= 0")
	}
	if len(r.script) == 0 {
		return 0
	}
	v := r.script[r.idx%len(r.script)]
	r.idx++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Calls returns how many draws have been made.
func (r *ScriptedRNG) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Reset rewinds the script and the call counter.
func (r *ScriptedRNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = 0
	r.calls = 0
}
