package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
)

// Dispatcher answers commands sent from the admin chat. Messages from any
// other chat are ignored.
type Dispatcher struct {
	c      *Client
	chatID int64
	state  func() models.AppState
}

func NewDispatcher(c *Client, adminChatID int64, state func() models.AppState) *Dispatcher {
	return &Dispatcher{c: c, chatID: adminChatID, state: state}
}

func (d *Dispatcher) Handle(ctx context.Context, u *Update) error {
	if u == nil || u.Message == nil || u.Message.Chat == nil {
		return nil
	}
	m := u.Message
	if m.Chat.ID != d.chatID {
		return nil
	}
	fields := strings.Fields(m.Text)
	if len(fields) == 0 {
		return nil
	}
	// "/stats@zat_bot" in groups
	cmd := strings.SplitN(fields[0], "@", 2)[0]

	var reply string
	switch cmd {
	case "/start", "/help":
		reply = "Commands: /stats, /groups, /unassigned"
	case "/stats":
		reply = StatsText(d.state())
	case "/groups":
		reply = GroupsText(d.state())
	case "/unassigned":
		reply = UnassignedText(d.state())
	default:
		reply = "Try /help"
	}
	return d.c.SendMessage(ctx, m.Chat.ID, reply)
}

func StatsText(st models.AppState) string {
	d := query.DashboardFor(st)
	var b strings.Builder
	fmt.Fprintf(&b, "<b>ZAT Initiative</b>\nStudents: %d (unassigned %d)\nCourses: %d\nGroups: %d\nSessions: %d\n",
		d.TotalStudents, d.UnassignedStudents, d.TotalCourses, d.TotalGroups, d.TotalSessions)
	if len(d.RecentSessions) > 0 {
		b.WriteString("\n<b>Recent sessions</b>\n")
		for _, r := range d.RecentSessions {
			fmt.Fprintf(&b, "• %s (%s): %d/%d\n",
				html.EscapeString(r.Session.Title), html.EscapeString(r.GroupName), r.AttendanceCount, r.StudentCount)
		}
	}
	return b.String()
}

func GroupsText(st models.AppState) string {
	if len(st.Groups) == 0 {
		return "No groups yet."
	}
	var b strings.Builder
	b.WriteString("<b>Groups</b>\n")
	for _, g := range st.Groups {
		gs := query.GroupStatusFor(st, g)
		limit := "∞"
		if g.MaxCapacity != nil {
			limit = fmt.Sprint(*g.MaxCapacity)
		}
		full := ""
		if gs.IsFull {
			full = " (مكتمل)"
		}
		fmt.Fprintf(&b, "• %s / %s: %d/%s%s\n",
			html.EscapeString(gs.Course.Name), html.EscapeString(g.Name), gs.StudentCount, limit, full)
	}
	return b.String()
}

func UnassignedText(st models.AppState) string {
	list := query.UnassignedStudents(st)
	if len(list) == 0 {
		return "Every student has a group."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Unassigned (%d)</b>\n", len(list))
	for _, s := range list {
		fmt.Fprintf(&b, "• %s %s\n", html.EscapeString(s.FullName), html.EscapeString(s.PhoneNumber))
	}
	return b.String()
}
