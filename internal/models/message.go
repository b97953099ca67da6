package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a chat message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ContentKind tells the panel how to render a message body
type ContentKind string

const (
	// KindPlain is shown verbatim (user input, the pending placeholder)
	KindPlain ContentKind = "plain"
	// KindMarkdown is an assistant answer rendered through the markdown pipeline
	KindMarkdown ContentKind = "markdown"
	// KindHTMLError is an error string shown with fixed error styling
	KindHTMLError ContentKind = "html-error"
)

// PendingPlaceholder is the content of the in-flight assistant message
const PendingPlaceholder = "..."

// Message represents a chat message in the panel conversation
type Message struct {
	ID        string
	Sender    Sender
	Content   string
	Kind      ContentKind
	Pending   bool
	CreatedAt time.Time
}

// NewUserMessage creates a plain user message
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    SenderUser,
		Content:   content,
		Kind:      KindPlain,
		CreatedAt: time.Now(),
	}
}

// NewPendingMessage creates the assistant placeholder shown while a turn is in flight
func NewPendingMessage() Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    SenderAssistant,
		Content:   PendingPlaceholder,
		Kind:      KindPlain,
		Pending:   true,
		CreatedAt: time.Now(),
	}
}

// IsAssistant reports whether the message was authored by the assistant
func (m Message) IsAssistant() bool {
	return m.Sender == SenderAssistant
}
