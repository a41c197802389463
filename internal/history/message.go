package history

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	FromUser      Sender = "user"
	FromAssistant Sender = "assistant"
)

// Kind tells renderers how to interpret Content.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// TimeLayout is the wall-clock format stored in Message.Time.
const TimeLayout = "3:04:05 PM"

// Message is a single timeline entry. For images Content holds the encoded
// payload (typically a data URL). Messages are never mutated after creation.
type Message struct {
	From    Sender `json:"from" yaml:"from"`
	Content string `json:"content" yaml:"content"`
	Time    string `json:"time" yaml:"time"`
	Type    Kind   `json:"type" yaml:"type"`
}

// NewText builds a text message stamped with t.
func NewText(from Sender, content string, t time.Time) Message {
	return Message{From: from, Content: content, Time: t.Format(TimeLayout), Type: KindText}
}

// NewImage builds an image message stamped with t.
func NewImage(from Sender, payload string, t time.Time) Message {
	return Message{From: from, Content: payload, Time: t.Format(TimeLayout), Type: KindImage}
}
