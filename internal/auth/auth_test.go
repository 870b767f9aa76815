package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFlags struct {
	on   bool
	set  int
	fail bool
}

func (m *memFlags) LoadAuthFlag() bool { return m.on }

func (m *memFlags) SaveAuthFlag(on bool) error {
	if m.fail {
		return errors.New("read-only")
	}
	m.set++
	m.on = on
	return nil
}

func newGate(f *memFlags) *Gate { return NewGate(f, "admin@zat.org", "zat2024") }

func TestLogin(t *testing.T) {
	f := &memFlags{}
	g := newGate(f)

	assert.True(t, g.Login("admin@zat.org", "zat2024"))
	assert.True(t, f.on)
	assert.True(t, g.IsAuthenticated())

	require.NoError(t, g.Logout())
	assert.False(t, g.IsAuthenticated())
}

func TestLoginWrongPairLeavesFlag(t *testing.T) {
	for _, tc := range []struct{ email, password string }{
		{"admin@zat.org", "wrong"},
		{"Admin@zat.org", "zat2024"},
		{"", ""},
	} {
		f := &memFlags{on: true}
		g := newGate(f)
		assert.False(t, g.Login(tc.email, tc.password))
		assert.True(t, f.on)
		assert.Zero(t, f.set, "flag untouched for %q", tc.email)
	}
}

func TestLoginFailsWhenFlagCannotBeSaved(t *testing.T) {
	g := newGate(&memFlags{fail: true})
	assert.False(t, g.Login("admin@zat.org", "zat2024"))
}

func TestSessionTokens(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)

	tok, err := s.Issue("admin@zat.org")
	require.NoError(t, err)
	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin@zat.org", claims.Email)

	_, err = NewSessions("other", time.Hour, false).Verify(tok)
	assert.Error(t, err, "wrong secret")

	expired, err := NewSessions("secret", -time.Minute, false).Issue("admin@zat.org")
	require.NoError(t, err)
	_, err = s.Verify(expired)
	assert.Error(t, err, "expired")
}

func TestRequireAdmin(t *testing.T) {
	f := &memFlags{}
	g := newGate(f)
	s := NewSessions("secret", time.Hour, false)
	h := RequireAdmin(g, s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(cookie string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/dashboard", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	tok, err := s.Issue("admin@zat.org")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("forged"))
	assert.Equal(t, http.StatusUnauthorized, call(tok), "flag not set")

	require.True(t, g.Login("admin@zat.org", "zat2024"))
	assert.Equal(t, http.StatusNoContent, call(tok))

	require.NoError(t, g.Logout())
	assert.Equal(t, http.StatusUnauthorized, call(tok), "logout revokes cookies")
}
