package models

import "time"

// Kind distinguishes human-authored messages from system-generated notices.
type Kind string

const (
	KindGeneric Kind = "generic"
	KindNotice  Kind = "notice"
)

// Message represents a single entry from a chat export
type Message struct {
	Sender    string   `json:"sender"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp_ms"` // milliseconds since epoch
	Type      string   `json:"type"`
	Kind      Kind     `json:"kind"`
	// Additional fields for richer data
	Users     []string   `json:"users,omitempty"`  // users referenced by a notice
	Photos    []string   `json:"photos,omitempty"` // attachment URIs, in export order
	Reactions []Reaction `json:"reactions,omitempty"`
}

// Reaction is a single emoji reaction left on a message
type Reaction struct {
	Emoji string `json:"emoji"`
	Actor string `json:"actor"`
}

// Time returns the message timestamp as local time
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}
