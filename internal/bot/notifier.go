package bot

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/log"
)

// DefaultNoticeTTL is how long the superseded notice stays in the chat.
const DefaultNoticeTTL = 2500 * time.Millisecond

// MsgSuperseded is the ephemeral notice shown when a new command displaces
// a running one.
const MsgSuperseded = "⏳ Previous command cancelled."

// Notifier reports command progress to a chat. Callers log its errors and
// carry on.
type Notifier interface {
	NotifyProgress(ctx context.Context, chatID int64, text string) error
	NotifyResult(ctx context.Context, chatID int64, res command.Result) error
	NotifySuperseded(ctx context.Context, chatID int64) error
	// DismissProgress deletes the progress message, for commands whose
	// result is a photo or file rather than text.
	DismissProgress(ctx context.Context, chatID int64) error
}

// ChatNotifier implements Notifier over a Messenger. It remembers the last
// progress message per chat so the result can replace it in place.
type ChatNotifier struct {
	messenger Messenger
	noticeTTL time.Duration

	mu       sync.Mutex
	progress map[int64]int

	pending sync.WaitGroup
}

var _ Notifier = (*ChatNotifier)(nil)

// NewChatNotifier creates a notifier. A zero noticeTTL means DefaultNoticeTTL.
func NewChatNotifier(m Messenger, noticeTTL time.Duration) *ChatNotifier {
	if noticeTTL <= 0 {
		noticeTTL = DefaultNoticeTTL
	}
	return &ChatNotifier{
		messenger: m,
		noticeTTL: noticeTTL,
		progress:  make(map[int64]int),
	}
}

// NotifyProgress sends text and remembers it as the chat's progress message.
func (n *ChatNotifier) NotifyProgress(ctx context.Context, chatID int64, text string) error {
	id, err := n.messenger.Send(ctx, chatID, text, nil)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.progress[chatID] = id
	n.mu.Unlock()
	return nil
}

// NotifyResult edits the progress message into the result, or sends a new
// message when there is none or the edit fails.
func (n *ChatNotifier) NotifyResult(ctx context.Context, chatID int64, res command.Result) error {
	text := res.Icon() + " " + res.Message

	if id, ok := n.takeProgress(chatID); ok {
		err := n.messenger.Edit(ctx, chatID, id, text)
		if err == nil {
			return nil
		}
		log.ErrorErr(log.CatBot, "edit progress message failed, sending instead", err, "chat", chatID)
	}
	_, err := n.messenger.Send(ctx, chatID, text, nil)
	return err
}

// NotifySuperseded sends MsgSuperseded and deletes it after the notice TTL.
// The deletion happens in the background.
func (n *ChatNotifier) NotifySuperseded(ctx context.Context, chatID int64) error {
	id, err := n.messenger.Send(ctx, chatID, MsgSuperseded, nil)
	if err != nil {
		return err
	}

	n.pending.Add(1)
	time.AfterFunc(n.noticeTTL, func() {
		defer n.pending.Done()
		if err := n.messenger.Delete(context.Background(), chatID, id); err != nil {
			log.ErrorErr(log.CatBot, "delete superseded notice failed", err, "chat", chatID)
		}
	})
	return nil
}

// DismissProgress deletes the chat's progress message, if any.
func (n *ChatNotifier) DismissProgress(ctx context.Context, chatID int64) error {
	id, ok := n.takeProgress(chatID)
	if !ok {
		return nil
	}
	return n.messenger.Delete(ctx, chatID, id)
}

// Wait blocks until every scheduled notice deletion has run.
func (n *ChatNotifier) Wait() {
	n.pending.Wait()
}

func (n *ChatNotifier) takeProgress(chatID int64) (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.progress[chatID]
	delete(n.progress, chatID)
	return id, ok
}
