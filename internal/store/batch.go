package store

import (
	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/models"
)

type noSave struct{}

func (noSave) Save(models.AppState) error { return nil }

// Batch runs several operations as one write. Inside fn, tx behaves like s
// but persists nothing; the final state is saved once and the events the
// operations raised are published only after that save succeeds. On any
// error st comes back unchanged and nothing is published.
func (s *Store) Batch(st models.AppState, fn func(tx *Store, st models.AppState) (models.AppState, error)) (models.AppState, error) {
	var held []events.Event
	tx := *s
	tx.p = noSave{}
	tx.held = &held

	next, err := fn(&tx, st)
	if err != nil {
		return st, err
	}
	next, err = s.commit(st, next, "batch")
	if err != nil {
		return st, err
	}
	for _, e := range held {
		s.bus.Publish(e)
	}
	return next, nil
}
