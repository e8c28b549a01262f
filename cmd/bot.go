package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/deskctl/internal/bot"
	"github.com/zjrosen/deskctl/internal/config"
	"github.com/zjrosen/deskctl/internal/coordinator"
	"github.com/zjrosen/deskctl/internal/executor"
	"github.com/zjrosen/deskctl/internal/history"
	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/pubsub"
	"github.com/zjrosen/deskctl/internal/tracing"
	"github.com/zjrosen/deskctl/internal/watcher"
)

// botShutdownTimeout bounds how long in-flight commands get to unwind.
const botShutdownTimeout = 10 * time.Second

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot that forwards the owner's commands to the PC agent.

Only bot.owner_id may use the bot. Commands run one at a time per chat: a new
command cancels the one still running and posts a short notice.

Example:
  DESKCTL_BOT_TOKEN=123:abc DESKCTL_BOT_OWNER_ID=42 deskctl bot`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(_ *cobra.Command, _ []string) error {
	if err := cfg.ValidateForBot(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupLogging(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tc := cfg.Tracing
	tc.ServiceName = "deskctl-bot"
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("creating tracing provider: %w", err)
	}
	defer shutdownTracing(provider)

	broker := pubsub.NewBroker[coordinator.Event]()
	coord := coordinator.New[int64](
		coordinator.WithBroker(broker),
		coordinator.WithTracer(provider.Tracer()),
	)

	recorderDone, err := startHistory(ctx, coord)
	if err != nil {
		return err
	}

	policy := cfg.Transport.RetryPolicy()
	policy.OnRetry = logRetry
	client, err := executor.NewClient(executor.ClientConfig{
		BaseURL:        cfg.Transport.AgentURL,
		Token:          cfg.AuthToken,
		RequestTimeout: cfg.Transport.RequestTimeout,
		Policy:         policy,
		Tracer:         provider.Tracer(),
	})
	if err != nil {
		return fmt.Errorf("creating agent client: %w", err)
	}

	if configPath != "" && fileExists(configPath) {
		stopWatch, err := watchConfig(ctx, configPath, client)
		if err != nil {
			log.ErrorErr(log.CatWatcher, "config hot reload disabled", err, "path", configPath)
		} else {
			defer stopWatch()
		}
	}

	tg, err := bot.NewTelegram(bot.TelegramConfig{
		Token:       cfg.Bot.Token,
		APIEndpoint: cfg.Bot.APIEndpoint,
		PollTimeout: cfg.Bot.PollTimeout,
	})
	if err != nil {
		return err
	}

	notifier := bot.NewChatNotifier(tg, cfg.Bot.NoticeTTL)
	b := bot.New(bot.Config{
		OwnerID:        cfg.Bot.OwnerID,
		PromptTTL:      cfg.Bot.PromptTTL,
		StatusCacheTTL: cfg.Bot.StatusCacheTTL,
	}, tg, client, coord, bot.WithNotifier(notifier))

	fmt.Printf("deskctl bot running, agent at %s\n", cfg.Transport.AgentURL)
	fmt.Println("Press Ctrl+C to stop")

	runErr := b.Run(ctx, tg.Poll(ctx), botShutdownTimeout)
	notifier.Wait()

	// Closing the broker lets the recorder drain the last events and exit.
	broker.Close()
	<-recorderDone

	fmt.Println("Bot stopped")
	return runErr
}

// startHistory prunes old rows and records coordinator events until the
// broker closes. The returned channel closes when the recorder exits.
func startHistory(ctx context.Context, coord *coordinator.Coordinator[int64]) (<-chan struct{}, error) {
	done := make(chan struct{})
	if !cfg.History.Enabled {
		close(done)
		return done, nil
	}

	db, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	repo := history.NewRepository(db)

	if cfg.History.Retention > 0 {
		n, err := repo.Prune(ctx, time.Now().Add(-cfg.History.Retention))
		if err != nil {
			log.ErrorErr(log.CatDB, "pruning history failed", err)
		} else if n > 0 {
			log.Info(log.CatDB, "pruned history", "rows", n)
		}
	}

	// Subscribed with a background context so events published during
	// shutdown are still recorded.
	events := coord.Subscribe(context.Background())
	go func() {
		defer close(done)
		defer func() { _ = db.Close() }()
		history.NewRecorder(repo).Run(context.Background(), events)
	}()
	return done, nil
}

// watchConfig re-applies the log level and retry policy when the config file
// changes. Other settings need a restart.
func watchConfig(ctx context.Context, path string, client *executor.Client) (func(), error) {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				reloadConfig(path, client)
			}
		}
	}()
	return func() { _ = w.Stop() }, nil
}

func reloadConfig(path string, client *executor.Client) {
	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		log.ErrorErr(log.CatConfig, "reloading config failed", err, "path", path)
		return
	}
	next, err := config.Decode(v)
	if err != nil {
		log.ErrorErr(log.CatConfig, "reloading config failed", err, "path", path)
		return
	}
	if err := config.ValidateLog(next.Log); err != nil {
		log.ErrorErr(log.CatConfig, "ignoring reloaded log settings", err)
	} else {
		level, _ := log.ParseLevel(next.Log.Level)
		log.SetMinLevel(level)
	}
	if err := config.ValidateTransport(next.Transport); err != nil {
		log.ErrorErr(log.CatConfig, "ignoring reloaded transport settings", err)
	} else {
		policy := next.Transport.RetryPolicy()
		policy.OnRetry = logRetry
		client.SetPolicy(policy)
	}
	log.Info(log.CatConfig, "config reloaded", "path", path, "log_level", next.Log.Level, "max_attempts", next.Transport.MaxAttempts)
}

func logRetry(attempt int, err error, delay time.Duration) {
	log.Warn(log.CatTransport, "agent request failed, retrying", "attempt", attempt, "delay", delay, "error", err)
}

func shutdownTracing(p *tracing.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
	}
}
