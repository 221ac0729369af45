package interfaces

import (
	"context"

	"relaybot/internal/entities"
)

// SendOptions decorates an outbound message.
type SendOptions struct {
	ReplyToMessageID int                   // quote this message, 0 for none
	ReplyAction      *entities.ReplyAction // attach the inline "Reply" button
}

// Gateway is the chat platform transport.
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) error
	SendPhoto(ctx context.Context, chatID int64, photo entities.MediaRef, caption string, opts SendOptions) error
	SendVideo(ctx context.Context, chatID int64, video entities.MediaRef, caption string, opts SendOptions) error
	AnswerCallback(ctx context.Context, callbackID string) error
	RegisterWebhook(ctx context.Context, url string) error
	DeleteWebhook(ctx context.Context) error
}

// SessionStore remembers, per administrator, which user the next
// administrator message is addressed to.
type SessionStore interface {
	Set(adminID, targetUserID int64)
	Get(adminID int64) (int64, bool)
	Clear(adminID int64)
	Len() int
}
