package domain

import (
	"net/url"
	"strings"
	"time"
)

// MessageKind is the type of an inbound event.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
)

// Inbound is a single customer-originated event.
type Inbound struct {
	// ID identifies the event for log correlation.
	ID string `json:"id"`
	// From is the sender's customer identifier.
	From string      `json:"from"`
	Kind MessageKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	// MediaID is the channel's handle for an attached image.
	MediaID    string    `json:"media_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

var transientMediaHosts = []string{"lookaside.fbsbx.com", "whatsapp.net", "fbcdn.net"}

// IsTransientMediaURL reports whether u points at the channel's own expiring media storage.
// Such URLs are accepted as-is instead of being persisted.
func IsTransientMediaURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range transientMediaHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// IsWebURL reports whether u is an absolute http(s) URL.
func IsWebURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
