package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/logging"
	"github.com/zat/initiative/internal/models"
)

type sent struct {
	path   string
	chatID int64
	text   string
}

// fakeTelegram records sendMessage calls.
func fakeTelegram(t *testing.T) (*httptest.Server, func() []sent) {
	t.Helper()
	var mu sync.Mutex
	var calls []sent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ChatID int64  `json:"chat_id"`
			Text   string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, sent{path: r.URL.Path, chatID: body.ChatID, text: body.Text})
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []sent {
		mu.Lock()
		defer mu.Unlock()
		return append([]sent(nil), calls...)
	}
}

func TestSendMessage(t *testing.T) {
	srv, calls := fakeTelegram(t)
	c := NewClient("123:abc", srv.URL)

	require.NoError(t, c.SendMessage(context.Background(), 42, "hi"))
	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, "/bot123:abc/sendMessage", got[0].path)
	assert.Equal(t, int64(42), got[0].chatID)
	assert.Equal(t, "hi", got[0].text)
}

func TestSendMessageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient("x", srv.URL).SendMessage(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestNotifierForwardsSelectedEvents(t *testing.T) {
	srv, calls := fakeTelegram(t)
	bus := events.NewBus()
	n := NewNotifier(NewClient("tok", srv.URL), -100, logging.Discard())
	unsub := n.Attach(bus)
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	bus.Publish(events.Event{Kind: events.Success, Topic: "course.added", Message: "ignored"})
	bus.Publish(events.Event{Kind: events.Success, Topic: "attendance.recorded", Message: "Sara <A>"})
	bus.Publish(events.Event{Kind: events.Warning, Topic: "group.over_capacity", Message: "full"})

	require.Eventually(t, func() bool { return len(calls()) == 2 }, 2*time.Second, 10*time.Millisecond)
	got := calls()
	assert.Equal(t, "✅ Sara &lt;A&gt;", got[0].text)
	assert.Equal(t, int64(-100), got[0].chatID)
	assert.True(t, strings.HasSuffix(got[1].text, "full"))
}

func TestDispatcherAnswersAdminChatOnly(t *testing.T) {
	srv, calls := fakeTelegram(t)
	st := models.AppState{
		Courses:  []models.Course{{ID: "c1", Name: "كانفا"}},
		Groups:   []models.Group{{ID: "g1", CourseID: "c1", Name: "A", MaxCapacity: models.IntPtr(1)}},
		Students: []models.Student{{ID: "s1", FullName: "Sara", GroupID: models.StringPtr("g1")}, {ID: "s2", FullName: "Omar"}},
	}
	st.Normalize()
	d := NewDispatcher(NewClient("tok", srv.URL), 7, func() models.AppState { return st })

	ctx := context.Background()
	require.NoError(t, d.Handle(ctx, &Update{Message: &Message{Chat: &Chat{ID: 99}, Text: "/stats"}}))
	assert.Empty(t, calls(), "foreign chat ignored")

	require.NoError(t, d.Handle(ctx, &Update{Message: &Message{Chat: &Chat{ID: 7}, Text: "/stats@zat_bot"}}))
	require.NoError(t, d.Handle(ctx, &Update{Message: &Message{Chat: &Chat{ID: 7}, Text: "/groups"}}))
	require.NoError(t, d.Handle(ctx, &Update{Message: &Message{Chat: &Chat{ID: 7}, Text: "/unassigned"}}))

	got := calls()
	require.Len(t, got, 3)
	assert.Contains(t, got[0].text, "Students: 2 (unassigned 1)")
	assert.Contains(t, got[1].text, "كانفا / A: 1/1 (مكتمل)")
	assert.Contains(t, got[2].text, "Omar")
}
