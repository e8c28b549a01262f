// Package config provides configuration types, defaults, and validation for
// the deskctl bot and agent.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/deskctl/internal/agent"
	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/retry"
	"github.com/zjrosen/deskctl/internal/tracing"
)

// EnvPrefix namespaces environment overrides, e.g. DESKCTL_BOT_TOKEN.
const EnvPrefix = "DESKCTL"

// Config holds all configuration options for deskctl.
type Config struct {
	Log LogConfig `mapstructure:"log"`
	// AuthToken is shared by both roles: the bot sends it and the agent
	// requires it.
	AuthToken string          `mapstructure:"auth_token"`
	Bot       BotConfig       `mapstructure:"bot"`
	Transport TransportConfig `mapstructure:"transport"`
	Agent     AgentConfig     `mapstructure:"agent"`
	History   HistoryConfig   `mapstructure:"history"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info (default), warn, error
	// File receives log lines. Empty means stdout.
	File string `mapstructure:"file"`
}

// BotConfig holds the chat side settings.
type BotConfig struct {
	Token   string `mapstructure:"token"`
	OwnerID int64  `mapstructure:"owner_id"`
	// APIEndpoint overrides the Bot API URL format, for self-hosted servers.
	APIEndpoint string `mapstructure:"api_endpoint"`
	// NoticeTTL is how long the "previous command cancelled" notice stays up.
	NoticeTTL time.Duration `mapstructure:"notice_ttl"`
	// PromptTTL is how long a pending copy/download/shutdown prompt waits.
	PromptTTL time.Duration `mapstructure:"prompt_ttl"`
	// PollTimeout is the long-poll timeout for getUpdates.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	// StatusCacheTTL reuses a recent status reply. Zero disables it.
	StatusCacheTTL time.Duration `mapstructure:"status_cache_ttl"`
}

// TransportConfig configures bot-to-agent HTTP calls.
type TransportConfig struct {
	AgentURL       string        `mapstructure:"agent_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
}

// RetryPolicy converts the transport settings into a retry.Policy.
func (t TransportConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: t.MaxAttempts,
		BaseDelay:   t.BaseDelay,
		MaxDelay:    t.MaxDelay,
	}
}

// AgentConfig holds the PC side settings.
type AgentConfig struct {
	Listen        string `mapstructure:"listen"`
	UploadDir     string `mapstructure:"upload_dir"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
	// DownloadRoots limits /getfile. Empty allows any path.
	DownloadRoots  []string `mapstructure:"download_roots"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	// Commands overrides entries of the built-in command table.
	Commands map[string]agent.CommandSpec `mapstructure:"commands"`
}

// HistoryConfig controls the command history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
	// Retention prunes rows older than this at startup. Zero keeps everything.
	Retention time.Duration `mapstructure:"retention"`
}

// DefaultDir returns ~/.deskctl, or ".deskctl" if the home dir is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deskctl"
	}
	return filepath.Join(home, ".deskctl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	dir := DefaultDir()
	tr := tracing.DefaultConfig()
	tr.FilePath = filepath.Join(dir, "traces", "traces.jsonl")

	return Config{
		Log: LogConfig{Level: "info"},
		Bot: BotConfig{
			NoticeTTL:      2500 * time.Millisecond,
			PromptTTL:      2 * time.Minute,
			PollTimeout:    60 * time.Second,
			StatusCacheTTL: 5 * time.Second,
		},
		Transport: TransportConfig{
			AgentURL:       "http://127.0.0.1:5000",
			RequestTimeout: 30 * time.Second,
			MaxAttempts:    retry.DefaultMaxAttempts,
			BaseDelay:      retry.DefaultBaseDelay,
			MaxDelay:       retry.DefaultMaxDelay,
		},
		Agent: AgentConfig{
			Listen:         "0.0.0.0:5000",
			UploadDir:      filepath.Join(dir, "uploads"),
			ScreenshotDir:  filepath.Join(dir, "screenshots"),
			MaxUploadBytes: agent.DefaultMaxUploadBytes,
		},
		History: HistoryConfig{
			Enabled:   true,
			DBPath:    filepath.Join(dir, "history.db"),
			Retention: 30 * 24 * time.Hour,
		},
		Tracing: tr,
	}
}

// SetDefaults registers every default on v. Keys must be known to viper for
// AutomaticEnv to pick up DESKCTL_* overrides.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("auth_token", d.AuthToken)
	v.SetDefault("bot.token", d.Bot.Token)
	v.SetDefault("bot.owner_id", d.Bot.OwnerID)
	v.SetDefault("bot.api_endpoint", d.Bot.APIEndpoint)
	v.SetDefault("bot.notice_ttl", d.Bot.NoticeTTL)
	v.SetDefault("bot.prompt_ttl", d.Bot.PromptTTL)
	v.SetDefault("bot.poll_timeout", d.Bot.PollTimeout)
	v.SetDefault("bot.status_cache_ttl", d.Bot.StatusCacheTTL)
	v.SetDefault("transport.agent_url", d.Transport.AgentURL)
	v.SetDefault("transport.request_timeout", d.Transport.RequestTimeout)
	v.SetDefault("transport.max_attempts", d.Transport.MaxAttempts)
	v.SetDefault("transport.base_delay", d.Transport.BaseDelay)
	v.SetDefault("transport.max_delay", d.Transport.MaxDelay)
	v.SetDefault("agent.listen", d.Agent.Listen)
	v.SetDefault("agent.upload_dir", d.Agent.UploadDir)
	v.SetDefault("agent.screenshot_dir", d.Agent.ScreenshotDir)
	v.SetDefault("agent.download_roots", d.Agent.DownloadRoots)
	v.SetDefault("agent.max_upload_bytes", d.Agent.MaxUploadBytes)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db_path", d.History.DBPath)
	v.SetDefault("history.retention", d.History.Retention)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Tracing.ServiceName = "deskctl"
	return cfg, nil
}

// ValidateLog checks the log section.
func ValidateLog(l LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateBot checks settings the bot cannot start without.
func ValidateBot(b BotConfig) error {
	if b.Token == "" {
		return errors.New("bot.token is required (or set DESKCTL_BOT_TOKEN)")
	}
	if b.OwnerID == 0 {
		return errors.New("bot.owner_id is required (or set DESKCTL_BOT_OWNER_ID)")
	}
	if b.NoticeTTL < 0 {
		return fmt.Errorf("bot.notice_ttl must not be negative, got %v", b.NoticeTTL)
	}
	if b.PromptTTL <= 0 {
		return fmt.Errorf("bot.prompt_ttl must be positive, got %v", b.PromptTTL)
	}
	if b.PollTimeout < time.Second {
		return fmt.Errorf("bot.poll_timeout must be at least 1s, got %v", b.PollTimeout)
	}
	if b.StatusCacheTTL < 0 {
		return fmt.Errorf("bot.status_cache_ttl must not be negative, got %v", b.StatusCacheTTL)
	}
	return nil
}

// ValidateTransport checks the bot-to-agent transport settings.
func ValidateTransport(t TransportConfig) error {
	u, err := url.Parse(t.AgentURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("transport.agent_url must be an http(s) URL, got %q", t.AgentURL)
	}
	if t.RequestTimeout <= 0 {
		return fmt.Errorf("transport.request_timeout must be positive, got %v", t.RequestTimeout)
	}
	if t.MaxAttempts < 1 {
		return fmt.Errorf("transport.max_attempts must be at least 1, got %d", t.MaxAttempts)
	}
	if t.BaseDelay < 0 {
		return fmt.Errorf("transport.base_delay must not be negative, got %v", t.BaseDelay)
	}
	if t.MaxDelay != 0 && t.MaxDelay < t.BaseDelay {
		return fmt.Errorf("transport.max_delay (%v) must not be less than transport.base_delay (%v)", t.MaxDelay, t.BaseDelay)
	}
	return nil
}

// ValidateAgent checks the agent section. The agent refuses to start
// without an auth token.
func ValidateAgent(a AgentConfig, authToken string) error {
	if authToken == "" {
		return errors.New("auth_token is required (run 'deskctl token rotate' or set DESKCTL_AUTH_TOKEN)")
	}
	if _, _, err := net.SplitHostPort(a.Listen); err != nil {
		return fmt.Errorf("agent.listen must be host:port, got %q", a.Listen)
	}
	if a.UploadDir == "" {
		return errors.New("agent.upload_dir is required")
	}
	if a.ScreenshotDir == "" {
		return errors.New("agent.screenshot_dir is required")
	}
	for i, root := range a.DownloadRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("agent.download_roots[%d] must be an absolute path, got %q", i, root)
		}
	}
	if a.MaxUploadBytes <= 0 {
		return fmt.Errorf("agent.max_upload_bytes must be positive, got %d", a.MaxUploadBytes)
	}
	for name, spec := range a.Commands {
		if len(spec.Argv) == 0 {
			return fmt.Errorf("agent.commands.%s.argv is required", name)
		}
		if spec.CaptureAs != "" && !spec.Capture {
			return fmt.Errorf("agent.commands.%s.capture_as requires capture: true", name)
		}
	}
	return nil
}

// ValidateHistory checks the history section.
func ValidateHistory(h HistoryConfig) error {
	if !h.Enabled {
		return nil
	}
	if h.DBPath == "" {
		return errors.New("history.db_path is required when history is enabled")
	}
	if h.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative, got %v", h.Retention)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateForBot validates every section the bot reads.
func (c Config) ValidateForBot() error {
	return errors.Join(
		ValidateLog(c.Log),
		ValidateBot(c.Bot),
		ValidateTransport(c.Transport),
		ValidateHistory(c.History),
		ValidateTracing(c.Tracing),
	)
}

// ValidateForAgent validates every section the agent reads.
func (c Config) ValidateForAgent() error {
	return errors.Join(
		ValidateLog(c.Log),
		ValidateAgent(c.Agent, c.AuthToken),
		ValidateTracing(c.Tracing),
	)
}
