package chat

import (
	"strings"
	"time"
)

const (
	MaxHistory  = 50
	MaxTextLen  = 200
	MaxCheerLen = 50
)

type Kind string

const (
	KindChat  Kind = "chat"
	KindCheer Kind = "cheer"
)

type Message struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Time int64  `json:"time"` // unix millis
	Slot string `json:"slot"`
	Type Kind   `json:"type,omitempty"`
}

// Log keeps the newest MaxHistory messages of one room.
type Log struct {
	entries []Message
	limit   int
}

func NewLog() *Log { return &Log{limit: MaxHistory} }

func (l *Log) Append(m Message) {
	l.entries = append(l.entries, m)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// History returns a copy, oldest first.
func (l *Log) History() []Message {
	out := make([]Message, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int { return len(l.entries) }

// NewMessage trims and truncates text for the given kind. ok is false when
// nothing is left to send.
func NewMessage(kind Kind, name, slot, text string, now time.Time) (Message, bool) {
	limit := MaxTextLen
	if kind == KindCheer {
		limit = MaxCheerLen
	}
	text = Truncate(strings.TrimSpace(text), limit)
	if text == "" {
		return Message{}, false
	}
	m := Message{Name: name, Text: text, Time: now.UnixMilli(), Slot: slot}
	if kind == KindCheer {
		m.Type = KindCheer
	}
	return m, true
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
