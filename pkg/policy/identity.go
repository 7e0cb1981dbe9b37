package policy

import (
	"sync"
	"sync/atomic"
)

// Identity is an opaque, immutable policy version token. It is typically a
// hash string but the package attaches no meaning to its contents.
type Identity string

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == ""
}

// String returns the identity token.
func (i Identity) String() string {
	return string(i)
}

// Short returns a truncated form of the identity suitable for log fields.
func (i Identity) Short() string {
	const n = 12
	if len(i) <= n {
		return string(i)
	}
	return string(i[:n])
}

// RotationFunc is called after a successful rotation with the previous and
// new identity. Callbacks run synchronously on the rotating goroutine and
// must not block for long.
type RotationFunc func(old, new Identity)

// Holder holds the currently active policy identity.
//
// Reads are lock-free atomic snapshots; a reader never observes a torn or
// partially updated identity. Rotations are serialized, swap the identity
// wholesale, and notify subscribers only when the identity actually changed.
type Holder struct {
	current atomic.Pointer[Identity]

	mu          sync.Mutex
	subscribers []RotationFunc
}

// NewHolder creates a Holder with the given initial identity.
func NewHolder(initial Identity) *Holder {
	h := &Holder{}
	h.current.Store(&initial)
	return h
}

// Current returns an atomic snapshot of the active identity.
func (h *Holder) Current() Identity {
	return *h.current.Load()
}

// Rotate atomically replaces the active identity.
//
// Rotation is idempotent: if next equals the current identity, nothing
// happens and Rotate returns false. Otherwise the identity is swapped,
// subscribers are notified with the old and new values, and Rotate returns
// true.
func (h *Holder) Rotate(next Identity) bool {
	h.mu.Lock()
	old := *h.current.Load()
	if old == next {
		h.mu.Unlock()
		return false
	}
	h.current.Store(&next)
	subs := make([]RotationFunc, len(h.subscribers))
	copy(subs, h.subscribers)
	h.mu.Unlock()

	for _, fn := range subs {
		fn(old, next)
	}
	return true
}

// Subscribe registers a callback invoked on every effective rotation.
func (h *Holder) Subscribe(fn RotationFunc) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.subscribers = append(h.subscribers, fn)
	h.mu.Unlock()
}
