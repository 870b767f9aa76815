// Package store implements every mutation of the application state. Each
// operation takes the current models.AppState and returns the next one after
// persisting it; on any error the input state comes back unchanged.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/logging"
	"github.com/zat/initiative/internal/models"
)

// Persister writes a whole state. storage.Adapter satisfies it.
type Persister interface {
	Save(st models.AppState) error
}

type Store struct {
	p   Persister
	bus *events.Bus
	log logging.Logger

	now      func() time.Time
	newID    func() string
	newToken func() (string, error)

	// held is non-nil inside Batch: events wait there for the single save.
	held *[]events.Event
}

type Option func(*Store)

func WithBus(b *events.Bus) Option { return func(s *Store) { s.bus = b } }

func WithLogger(l logging.Logger) Option { return func(s *Store) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithIDs(newID func() string) Option { return func(s *Store) { s.newID = newID } }

func WithTokens(newToken func() (string, error)) Option {
	return func(s *Store) { s.newToken = newToken }
}

func New(p Persister, opts ...Option) *Store {
	s := &Store{
		p:        p,
		log:      logging.Discard(),
		now:      time.Now,
		newID:    uuid.NewString,
		newToken: RandomToken,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RandomToken returns 32 hex characters from 16 bytes of crypto/rand.
func RandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "read random token")
	}
	return hex.EncodeToString(b), nil
}

func (s *Store) stamp() string { return models.Timestamp(s.now()) }

// commit persists next. If that fails prev is returned with the error, so a
// caller never holds a state that was not written.
func (s *Store) commit(prev, next models.AppState, op string) (models.AppState, error) {
	next.Normalize()
	if err := s.p.Save(next); err != nil {
		s.log.Error("store: "+op, err)
		return prev, errors.Wrap(err, op)
	}
	return next, nil
}

func (s *Store) publish(kind events.Kind, topic, msg string, data map[string]string) {
	e := events.Event{Kind: kind, Topic: topic, Message: msg, Data: data, At: s.now()}
	if s.held != nil {
		*s.held = append(*s.held, e)
		return
	}
	s.bus.Publish(e)
}

// notFound logs and wraps ErrNotFound with the entity and id.
func (s *Store) notFound(entity, id string) error {
	s.log.Debug("store: " + entity + " " + id + " not found")
	return errors.Wrapf(ErrNotFound, "%s %q", entity, id)
}
