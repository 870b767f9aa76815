package store

import (
	"sync"

	"github.com/zat/initiative/internal/models"
)

// Holder owns the current state for the running application. Apply runs one
// read-modify-write at a time, so concurrent requests see last-write-wins
// without losing each other's changes.
type Holder struct {
	mu sync.Mutex
	st models.AppState
}

func NewHolder(initial models.AppState) *Holder {
	initial.Normalize()
	return &Holder{st: initial}
}

// Snapshot returns a copy that callers may keep and read freely.
func (h *Holder) Snapshot() models.AppState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.st.Clone()
}

// Apply hands the current state to fn and keeps what fn returns. The returned
// state is installed even when fn also returns an error, since store
// operations return their input state on failure.
func (h *Holder) Apply(fn func(models.AppState) (models.AppState, error)) (models.AppState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next, err := fn(h.st.Clone())
	next.Normalize()
	h.st = next
	return next.Clone(), err
}

// SetAuthenticated updates the in-memory copy of the auth flag.
func (h *Holder) SetAuthenticated(on bool) {
	h.mu.Lock()
	h.st.IsAuthenticated = on
	h.mu.Unlock()
}
