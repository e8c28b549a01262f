package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/deskctl/internal/log"
)

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# deskctl configuration
#
# Every key can be overridden from the environment with the DESKCTL_ prefix,
# e.g. DESKCTL_BOT_TOKEN, DESKCTL_BOT_OWNER_ID, DESKCTL_AUTH_TOKEN.

log:
  level: info        # debug, info, warn, error
  # file: ~/.deskctl/deskctl.log   # default: stdout

# Shared secret between bot and agent. Generate one with 'deskctl token rotate'.
auth_token: ""

# Chat side ('deskctl bot')
bot:
  token: ""          # Telegram bot token from @BotFather
  owner_id: 0        # Your numeric Telegram user ID; everyone else is refused
  # api_endpoint: https://api.telegram.org/bot%s/%s
  notice_ttl: 2.5s   # How long "previous command cancelled" stays visible
  prompt_ttl: 2m     # How long a copy/download/shutdown prompt waits for you
  poll_timeout: 60s
  status_cache_ttl: 5s   # Reuse a recent status reply; 0 disables

# How the bot reaches the agent
transport:
  agent_url: http://127.0.0.1:5000
  request_timeout: 30s   # Per attempt
  max_attempts: 3
  base_delay: 250ms      # Doubles after each failed attempt
  max_delay: 5s

# PC side ('deskctl agent')
agent:
  listen: 0.0.0.0:5000
  upload_dir: ~/.deskctl/uploads
  screenshot_dir: ~/.deskctl/screenshots
  # download_roots:      # Restrict file downloads to these directories
  #   - /home/me/Documents
  max_upload_bytes: 20971520
  # commands:            # Override the built-in command for this OS
  #   lock:
  #     argv: [xdg-screensaver, lock]
  #     message: "🔒 Screen locked"
  #   volume:
  #     argv: [pactl, set-sink-volume, "@DEFAULT_SINK@", "{level}%"]
  #     message: "🔊 Volume set to {level}%"
  #   battery:
  #     argv: [acpi, -b]
  #     capture: true
  #     message: "🔋 Battery Status"

# Command history ('deskctl history')
history:
  enabled: true
  db_path: ~/.deskctl/history.db
  retention: 720h

# Distributed tracing
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.deskctl/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file will hold secrets.
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ExpandPaths resolves "~/" in every path-valued setting.
func (c *Config) ExpandPaths() {
	c.Log.File = ExpandHome(c.Log.File)
	c.Agent.UploadDir = ExpandHome(c.Agent.UploadDir)
	c.Agent.ScreenshotDir = ExpandHome(c.Agent.ScreenshotDir)
	for i, root := range c.Agent.DownloadRoots {
		c.Agent.DownloadRoots[i] = ExpandHome(root)
	}
	c.History.DBPath = ExpandHome(c.History.DBPath)
	c.Tracing.FilePath = ExpandHome(c.Tracing.FilePath)
}
