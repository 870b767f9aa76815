// Package notify forwards check-ins and capacity warnings to an admin
// Telegram chat and answers a few read-only commands from that chat.
package notify

import (
	"context"
	"html"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/logging"
)

const queueSize = 64

// Notifier is a bus subscriber. Publishing never waits on Telegram: events
// are queued and sent by Run; when the queue is full they are dropped.
type Notifier struct {
	c      *Client
	chatID int64
	log    logging.Logger
	queue  chan string
}

func NewNotifier(c *Client, chatID int64, log logging.Logger) *Notifier {
	return &Notifier{c: c, chatID: chatID, log: log, queue: make(chan string, queueSize)}
}

// Attach subscribes to bus and returns the unsubscribe function.
func (n *Notifier) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(e events.Event) {
		text, ok := Format(e)
		if !ok {
			return
		}
		select {
		case n.queue <- text:
		default:
			n.log.Warn("notify: queue full, dropping " + e.Topic)
		}
	})
}

// Run sends queued messages until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-n.queue:
			if err := n.c.SendMessage(ctx, n.chatID, text); err != nil {
				n.log.Warn("notify: send failed", err)
			}
		}
	}
}

// Format renders the events worth a Telegram message.
func Format(e events.Event) (string, bool) {
	switch e.Topic {
	case "attendance.recorded":
		return "✅ " + html.EscapeString(e.Message), true
	case "group.over_capacity":
		return "⚠️ " + html.EscapeString(e.Message), true
	}
	return "", false
}
