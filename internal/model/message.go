package model

import "time"

// Conversation roles as replayed to the model. Order of turns is significant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is a single role-tagged message in a conversation sequence.
type Turn struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
}

// ChatMessage is a persisted conversation message. Timestamp and ContentType
// are stamped when the message is stored.
type ChatMessage struct {
	Role        string    `json:"role" bson:"role"`
	Content     string    `json:"content" bson:"content"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	ContentType string    `json:"content_type" bson:"content_type"`
}
