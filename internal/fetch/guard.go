package fetch

import "sync/atomic"

// Guard discards responses of superseded requests. Every new request begins a
// token; when its response arrives, the continuation applies it only if no
// newer request has begun in the meantime. This keeps an out-of-order slow
// response from overwriting state produced by a later request.
type Guard struct {
	seq atomic.Uint64
}

// Begin marks the start of a new request and returns its token. All earlier
// tokens become stale.
func (g *Guard) Begin() uint64 {
	return g.seq.Add(1)
}

// Current reports whether the token still identifies the newest request.
func (g *Guard) Current(token uint64) bool {
	return g.seq.Load() == token
}

// Apply runs fn only if token is still current and reports whether it ran.
// Stale responses are dropped without side effects.
func (g *Guard) Apply(token uint64, fn func()) bool {
	if !g.Current(token) {
		return false
	}
	fn()
	return true
}
