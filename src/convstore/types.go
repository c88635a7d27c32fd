package convstore

import (
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single chat message. Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id and timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Conversation is an ordered message history bound to an active model.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ModelID   string    `json:"modelId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const maxTitleLen = 30

// New creates a conversation for the given model. The title is derived
// from the first user message as it arrives.
func New(modelID string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     "新しい会話",
		ModelID:   modelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message and bumps UpdatedAt. The first user message also
// seeds the title.
func (c *Conversation) Append(msg Message) {
	if c.Title == "新しい会話" && msg.Role == RoleUser && msg.Content != "" {
		title := msg.Content
		if len([]rune(title)) > maxTitleLen {
			title = string([]rune(title)[:maxTitleLen]) + "…"
		}
		c.Title = title
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}
