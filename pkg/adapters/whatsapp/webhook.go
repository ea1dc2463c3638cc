package whatsapp

import (
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/mercato/pkg/domain"
)

// Notification is the webhook envelope posted by the channel.
type Notification struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Message is one inbound customer message.
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Image *Media `json:"image,omitempty"`
}

type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// Inbound flattens the envelope into customer events, in delivery order.
// Status callbacks carry no messages and yield nothing. Message types other than
// text and image become empty text events so the customer gets a re-prompt.
func (n Notification) Inbound() []domain.Inbound {
	var out []domain.Inbound
	for _, e := range n.Entry {
		for _, ch := range e.Changes {
			for _, m := range ch.Value.Messages {
				if m.From == "" {
					continue
				}
				out = append(out, m.inbound())
			}
		}
	}
	return out
}

func (m Message) inbound() domain.Inbound {
	in := domain.Inbound{
		ID:         m.ID,
		From:       m.From,
		Kind:       domain.KindText,
		ReceivedAt: parseTimestamp(m.Timestamp),
	}
	switch {
	case m.Type == "image" && m.Image != nil:
		in.Kind = domain.KindImage
		in.MediaID = m.Image.ID
		in.Text = m.Image.Caption
	case m.Text != nil:
		in.Text = strings.TrimSpace(m.Text.Body)
	}
	return in
}

func parseTimestamp(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return time.Now()
	}
	return time.Unix(secs, 0)
}
