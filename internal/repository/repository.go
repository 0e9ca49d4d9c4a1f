package repository

import (
	"context"

	"github.com/glowly/glowly-backend/internal/model"
)

// ChatRepository defines persistence operations for conversation documents.
// Each document is keyed by chat id and holds the owning uid plus a flat
// ordered message list.
type ChatRepository interface {
	// Append adds messages to the end of a chat's list, creating the
	// document when it does not exist. The append is atomic: concurrent
	// appends to the same chat interleave rather than lose updates.
	Append(ctx context.Context, chatID, uid string, messages []model.ChatMessage) error

	// Messages retrieves the stored messages for a chat id.
	// Returns nil, nil if the chat does not exist.
	Messages(ctx context.Context, chatID string) ([]model.ChatMessage, error)

	// MessagesByUID retrieves the messages of the first chat owned by uid.
	// Returns nil, nil if the user has no chats.
	MessagesByUID(ctx context.Context, uid string) ([]model.ChatMessage, error)
}
