// Package bot is the chat side of deskctl: it authorizes the owner, turns
// chat input into agent commands, and runs each command exclusively per chat.
package bot

import (
	"context"
	"time"
)

// Keyboard is a reply keyboard, one slice of button labels per row.
// A nil Keyboard leaves the chat's current keyboard in place.
type Keyboard [][]string

// Messenger is the chat transport the bot writes to.
type Messenger interface {
	// Send posts a text message and returns its message ID.
	Send(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	SendPhoto(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error
	// FileURL returns a URL the agent can download an attachment from.
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Attachment is a file the owner sent to the chat.
type Attachment struct {
	FileID string
	Name   string
	Size   int64
}

// Update is one incoming chat message, independent of the chat platform.
type Update struct {
	ChatID int64
	UserID int64
	Text   string
	// Document or Photo is set when the message carries a file.
	Document *Attachment
	Photo    *Attachment
	Date     time.Time
	// CallbackID is set for inline button presses, which this bot does not use.
	CallbackID string
}
