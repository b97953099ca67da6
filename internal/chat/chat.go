// Package chat holds the panel's conversation and the state machine that
// gates it. It performs no I/O; the TUI feeds it relay outcomes.
package chat

import (
	"strings"

	"github.com/diogo/leety/internal/models"
)

// State of the panel
type State int

const (
	// AwaitingKey shows the key modal; chat input is blocked
	AwaitingKey State = iota
	// Idle accepts a new question
	Idle
	// AwaitingResponse has exactly one pending assistant message
	AwaitingResponse
	// Error holds for the turn that failed until the error is rendered
	Error
)

func (s State) String() string {
	switch s {
	case AwaitingKey:
		return "awaiting-key"
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting-response"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Key modal messages
const (
	MsgEmptyKey   = "Please enter an API key."
	MsgInvalidKey = "Invalid API Key. Please check and try again."
	MsgVerifying  = "Verifying..."
)

// KeyOutcome is the result of verifying and saving a candidate key
type KeyOutcome int

const (
	KeyAccepted KeyOutcome = iota
	KeyRejected
	KeyFailed
)

// Machine is the chat state machine. It is not safe for concurrent use;
// the bubbletea loop owns it.
type Machine struct {
	state     State
	messages  []models.Message
	keyError  string
	verifying bool
}

// New returns a machine waiting for the stored key lookup
func New() *Machine {
	return &Machine{state: AwaitingKey}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Messages returns a copy of the conversation, newest last
func (m *Machine) Messages() []models.Message {
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages
func (m *Machine) Len() int {
	return len(m.messages)
}

// PendingCount returns how many pending assistant messages exist (0 or 1)
func (m *Machine) PendingCount() int {
	n := 0
	for _, msg := range m.messages {
		if msg.Pending {
			n++
		}
	}
	return n
}

// KeyError returns the inline key modal error, if any
func (m *Machine) KeyError() string {
	return m.keyError
}

// Verifying reports whether a key verification is in flight
func (m *Machine) Verifying() bool {
	return m.verifying
}

// KeyLoaded applies the result of the mount-time key lookup
func (m *Machine) KeyLoaded(apiKey string, err error) {
	if m.state != AwaitingKey {
		return
	}
	if err == nil && apiKey != "" {
		m.state = Idle
	}
}

// BeginKeySubmit validates a candidate key. It returns true when the caller
// should verify it; otherwise the reason is in KeyError.
func (m *Machine) BeginKeySubmit(candidate string) bool {
	if m.state != AwaitingKey || m.verifying {
		return false
	}
	if strings.TrimSpace(candidate) == "" {
		m.keyError = MsgEmptyKey
		return false
	}
	m.keyError = ""
	m.verifying = true
	return true
}

// ResolveKey applies the verification outcome. err is only read for KeyFailed.
func (m *Machine) ResolveKey(outcome KeyOutcome, err error) {
	if m.state != AwaitingKey || !m.verifying {
		return
	}
	m.verifying = false

	switch outcome {
	case KeyAccepted:
		m.keyError = ""
		m.state = Idle
	case KeyRejected:
		m.keyError = MsgInvalidKey
	default:
		msg := "unknown error"
		if err != nil {
			msg = err.Error()
		}
		m.keyError = "An error occurred: " + msg
	}
}

// Submit starts a chat turn. Empty input, or input while not Idle, is
// rejected with no change.
func (m *Machine) Submit(input string) bool {
	if m.state != Idle || strings.TrimSpace(input) == "" {
		return false
	}
	m.messages = append(m.messages, models.NewUserMessage(input), models.NewPendingMessage())
	m.state = AwaitingResponse
	return true
}

// Resolve replaces the pending message with the reply. An error reply
// moves to Error until AckError.
func (m *Machine) Resolve(content string, isError bool) bool {
	if m.state != AwaitingResponse {
		return false
	}

	i := len(m.messages) - 1
	for ; i >= 0; i-- {
		if m.messages[i].Pending {
			break
		}
	}
	if i < 0 {
		return false
	}

	m.messages[i].Pending = false
	m.messages[i].Content = content
	if isError {
		m.messages[i].Kind = models.KindHTMLError
		m.state = Error
	} else {
		m.messages[i].Kind = models.KindMarkdown
		m.state = Idle
	}
	return true
}

// AckError returns to Idle once the error message has been rendered
func (m *Machine) AckError() {
	if m.state == Error {
		m.state = Idle
	}
}

// Clear empties the conversation. Only allowed while Idle.
func (m *Machine) Clear() bool {
	if m.state != Idle {
		return false
	}
	m.messages = nil
	return true
}

// LastAssistant returns the most recent resolved assistant message
func (m *Machine) LastAssistant() (models.Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].IsAssistant() && !m.messages[i].Pending {
			return m.messages[i], true
		}
	}
	return models.Message{}, false
}
