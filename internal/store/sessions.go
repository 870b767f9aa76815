package store

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
)

// tokenAttempts bounds the retries when a fresh token collides.
const tokenAttempts = 20

var errTokenExhausted = errors.New("could not mint a unique check-in token")

// AddSession stores a session with a fresh check-in token. An empty title
// becomes "الجلسة N", N counting the group's sessions including this one.
func (s *Store) AddSession(st models.AppState, in models.SessionInput) (models.AppState, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	if err := Validate(in); err != nil {
		return st, err
	}
	if groupIndex(st, in.GroupID) < 0 {
		return st, fieldInvalid("groupId", "group does not exist")
	}
	token, err := s.mintToken(st)
	if err != nil {
		return st, err
	}
	title := in.Title
	if title == "" {
		title = DefaultSessionTitle(len(query.SessionsByGroup(st, in.GroupID)) + 1)
	}

	next := st.Clone()
	sess := models.Session{
		ID:        s.newID(),
		GroupID:   in.GroupID,
		Title:     title,
		Date:      in.Date,
		QRToken:   token,
		CreatedAt: s.stamp(),
	}
	next.Sessions = append(next.Sessions, sess)

	next, err = s.commit(st, next, "add session")
	if err == nil {
		s.publish(events.Success, "session.added", "تم إنشاء الجلسة", map[string]string{"sessionId": sess.ID})
	}
	return next, err
}

func DefaultSessionTitle(n int) string {
	return fmt.Sprintf("الجلسة %d", n)
}

func (s *Store) mintToken(st models.AppState) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		tok, err := s.newToken()
		if err != nil {
			return "", err
		}
		if tok != "" && !query.TokenTaken(st, tok) {
			return tok, nil
		}
	}
	s.log.Error("store: token retries exhausted", errTokenExhausted)
	return "", errTokenExhausted
}

// UpdateSession merges p. The token never changes.
func (s *Store) UpdateSession(st models.AppState, id string, p models.SessionPatch) (models.AppState, error) {
	if err := Validate(p); err != nil {
		return st, err
	}
	next := st.Clone()
	i := sessionIndex(next, id)
	if i < 0 {
		return st, s.notFound("session", id)
	}
	sess := &next.Sessions[i]
	if p.GroupID != nil && *p.GroupID != sess.GroupID {
		if groupIndex(st, *p.GroupID) < 0 {
			return st, fieldInvalid("groupId", "group does not exist")
		}
		sess.GroupID = *p.GroupID
	}
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			sess.Title = title
		}
	}
	if p.Date != nil {
		sess.Date = strings.TrimSpace(*p.Date)
	}

	next, err := s.commit(st, next, "update session")
	if err == nil {
		s.publish(events.Success, "session.updated", "تم تحديث الجلسة", map[string]string{"sessionId": id})
	}
	return next, err
}

// DeleteSession removes the session and its attendance.
func (s *Store) DeleteSession(st models.AppState, id string) (models.AppState, error) {
	if sessionIndex(st, id) < 0 {
		return st, s.notFound("session", id)
	}
	next := dropSessions(st.Clone(), func(sess models.Session) bool { return sess.ID == id })

	next, err := s.commit(st, next, "delete session")
	if err == nil {
		s.publish(events.Success, "session.deleted", "تم حذف الجلسة", map[string]string{"sessionId": id})
	}
	return next, err
}

func sessionIndex(st models.AppState, id string) int {
	for i, sess := range st.Sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}
