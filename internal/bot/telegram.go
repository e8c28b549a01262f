package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zjrosen/deskctl/internal/log"
)

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Token string
	// APIEndpoint overrides the Bot API URL format, e.g. for a local Bot API
	// server. Empty means tgbotapi.APIEndpoint.
	APIEndpoint string
	// PollTimeout is the long-polling timeout.
	PollTimeout time.Duration
}

// Telegram implements Messenger with the Telegram Bot API.
type Telegram struct {
	api         *tgbotapi.BotAPI
	pollTimeout time.Duration
}

var _ Messenger = (*Telegram)(nil)

// NewTelegram connects to the Bot API and checks the token.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if err := tgbotapi.SetLogger(botLogger{}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	log.Info(log.CatBot, "authorized on telegram", "username", api.Self.UserName)

	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Telegram{api: api, pollTimeout: timeout}, nil
}

// Send implements Messenger.
func (t *Telegram) Send(_ context.Context, chatID int64, text string, kb Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = replyKeyboard(kb)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// Edit implements Messenger.
func (t *Telegram) Edit(_ context.Context, chatID int64, messageID int, text string) error {
	if _, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Delete implements Messenger.
func (t *Telegram) Delete(_ context.Context, chatID int64, messageID int) error {
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendPhoto implements Messenger.
func (t *Telegram) SendPhoto(_ context.Context, chatID int64, name string, data []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	if _, err := t.api.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// SendDocument implements Messenger.
func (t *Telegram) SendDocument(_ context.Context, chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := t.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// FileURL implements Messenger.
func (t *Telegram) FileURL(_ context.Context, fileID string) (string, error) {
	url, err := t.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file url: %w", err)
	}
	return url, nil
}

// Poll long-polls the Bot API and emits updates until ctx is done. The
// returned channel is closed afterwards.
func (t *Telegram) Poll(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(t.pollTimeout / time.Second)
	raw := t.api.GetUpdatesChan(cfg)

	out := make(chan Update)
	go func() {
		defer close(out)
		defer t.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-raw:
				if !ok {
					return
				}
				u, ok := t.convert(upd)
				if !ok {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (t *Telegram) convert(upd tgbotapi.Update) (Update, bool) {
	if cq := upd.CallbackQuery; cq != nil {
		// Answer right away so the client stops showing a spinner.
		if _, err := t.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			log.ErrorErr(log.CatBot, "answer callback failed", err)
		}
		if cq.Message == nil || cq.Message.Chat == nil || cq.From == nil {
			return Update{}, false
		}
		return Update{ChatID: cq.Message.Chat.ID, UserID: cq.From.ID, CallbackID: cq.ID, Date: time.Now()}, true
	}

	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return Update{}, false
	}

	u := Update{
		ChatID: msg.Chat.ID,
		UserID: msg.From.ID,
		Text:   msg.Text,
		Date:   msg.Time(),
	}
	if doc := msg.Document; doc != nil {
		u.Document = &Attachment{FileID: doc.FileID, Name: doc.FileName, Size: int64(doc.FileSize)}
	}
	if n := len(msg.Photo); n > 0 {
		// Sizes are ordered smallest first.
		largest := msg.Photo[n-1]
		u.Photo = &Attachment{FileID: largest.FileID, Size: int64(largest.FileSize)}
	}
	return u, true
}

func replyKeyboard(kb Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, labels := range kb {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// botLogger routes the Bot API library's logging into ours.
type botLogger struct{}

func (botLogger) Println(v ...any) {
	log.Debug(log.CatBot, fmt.Sprint(v...))
}

func (botLogger) Printf(format string, v ...any) {
	log.Debug(log.CatBot, fmt.Sprintf(format, v...))
}
