package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zjrosen/deskctl/internal/cachemanager"
	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/coordinator"
	"github.com/zjrosen/deskctl/internal/executor"
	"github.com/zjrosen/deskctl/internal/log"
)

// Config holds the bot's behavior settings.
type Config struct {
	// OwnerID is the only user allowed to control the PC.
	OwnerID int64
	// PromptTTL bounds how long a copy, download or shutdown prompt waits.
	PromptTTL time.Duration
	// StatusCacheTTL reuses a recent status reply. Zero disables the cache.
	StatusCacheTTL time.Duration
}

// DefaultPromptTTL is used when Config.PromptTTL is zero.
const DefaultPromptTTL = 2 * time.Minute

// Bot routes chat updates to handlers. Commands that reach the PC run through
// the coordinator keyed by chat ID, so a new command cancels the chat's
// previous one.
type Bot struct {
	cfg       Config
	messenger Messenger
	agent     executor.Agent
	coord     *coordinator.Coordinator[int64]
	notifier  Notifier

	prompts cachemanager.CacheManager[int64, prompt]
	status  *cachemanager.ReadThroughCache[int64, command.SystemStatus]

	buttons  map[string]func(ctx context.Context, chatID int64)
	commands map[string]func(ctx context.Context, chatID int64, args string)

	inflight sync.WaitGroup
}

// Option customizes a Bot.
type Option func(*Bot)

// WithNotifier replaces the default ChatNotifier.
func WithNotifier(n Notifier) Option {
	return func(b *Bot) {
		b.notifier = n
	}
}

// New wires a bot. The notifier defaults to a ChatNotifier over m.
func New(cfg Config, m Messenger, agent executor.Agent, coord *coordinator.Coordinator[int64], opts ...Option) *Bot {
	if cfg.PromptTTL <= 0 {
		cfg.PromptTTL = DefaultPromptTTL
	}

	b := &Bot{
		cfg:       cfg,
		messenger: m,
		agent:     agent,
		coord:     coord,
		prompts: cachemanager.NewInMemoryCacheManager[int64, prompt](
			"prompts", cfg.PromptTTL, cachemanager.DefaultCleanupInterval),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.notifier == nil {
		b.notifier = NewChatNotifier(m, DefaultNoticeTTL)
	}

	statusCache := cachemanager.NewInMemoryCacheManager[int64, command.SystemStatus](
		"status", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	b.status = cachemanager.NewReadThroughCache(statusCache, func(ctx context.Context, _ int64) (command.SystemStatus, error) {
		return b.agent.Status(ctx)
	}, cfg.StatusCacheTTL)

	b.registerButtons()
	b.registerCommands()
	return b
}

// Run handles updates until ctx is done or updates closes, then cancels and
// drains in-flight commands within shutdownTimeout.
func (b *Bot) Run(ctx context.Context, updates <-chan Update, shutdownTimeout time.Duration) error {
	log.Info(log.CatBot, "bot started", "owner", b.cfg.OwnerID)

	for {
		select {
		case <-ctx.Done():
			return b.shutdown(shutdownTimeout)
		case u, ok := <-updates:
			if !ok {
				return b.shutdown(shutdownTimeout)
			}
			b.Handle(ctx, u)
		}
	}
}

func (b *Bot) shutdown(timeout time.Duration) error {
	b.coord.CancelAll()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := b.coord.Shutdown(ctx); err != nil {
		return fmt.Errorf("waiting for commands: %w", err)
	}
	b.Wait()
	log.Info(log.CatBot, "bot stopped")
	return nil
}

// Wait blocks until every command started by Handle has finished.
func (b *Bot) Wait() {
	b.inflight.Wait()
}

// exclusive starts fn as the chat's only live command and returns at once.
// The slot is reserved before returning, so updates handled in order
// supersede each other in order.
func (b *Bot) exclusive(ctx context.Context, chatID int64, name string, fn coordinator.Factory) {
	b.inflight.Add(1)
	done := b.coord.Go(ctx, chatID, b.guard(chatID, name, fn), func(ctx context.Context) error {
		return b.notifier.NotifySuperseded(ctx, chatID)
	}, coordinator.WithName(name))

	go func() {
		defer b.inflight.Done()
		<-done
	}()
}

// guard turns a panic in fn into an error reply. The coordinator records the
// command as failed.
func (b *Bot) guard(chatID int64, name string, fn coordinator.Factory) coordinator.Factory {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", name, r)
				b.reply(context.WithoutCancel(ctx), chatID, MsgUnexpected, nil)
			}
		}()
		return fn(ctx)
	}
}

// reply sends a message and logs failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, kb Keyboard) {
	if _, err := b.messenger.Send(ctx, chatID, text, kb); err != nil {
		log.ErrorErr(log.CatBot, "send failed", err, "chat", chatID)
	}
}
