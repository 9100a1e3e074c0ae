package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChartMarker is logged in place of chart content, which lives only in the
// response payload.
const ChartMarker = "[Chart generated]"

type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Conversation is one session's append-only message log. It is passed
// explicitly through the router rather than held in shared globals; each
// session owns its own instance.
type Conversation struct {
	ID string

	mu       sync.Mutex
	messages []Message
}

func NewConversation() *Conversation {
	return &Conversation{ID: uuid.New().String()}
}

func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: role, Content: content, At: time.Now()})
}

func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reset clears the log, the "new chat" action.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// Manager hands out per-session conversations to the HTTP layer.
type Manager struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
}

func NewManager() *Manager {
	return &Manager{conversations: make(map[string]*Conversation)}
}

// Get returns the conversation for id, creating one when id is unknown or
// blank. The returned conversation's ID is authoritative.
func (m *Manager) Get(id string) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if conv, ok := m.conversations[id]; ok {
			return conv
		}
	}

	conv := NewConversation()
	if id != "" {
		conv.ID = id
	}
	m.conversations[conv.ID] = conv
	return conv
}

func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, id)
}
