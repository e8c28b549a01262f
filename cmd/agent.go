package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/deskctl/internal/agent"
	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/tracing"
)

var agentListen string

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the PC agent",
	Long: `Run the HTTP agent that performs commands on this PC.

Every route except GET / requires "Authorization: Bearer <auth_token>".
Commands come from a built-in table for this OS; override entries under
agent.commands in the config file.

Example:
  deskctl agent                      # Listen on agent.listen
  deskctl agent --listen 127.0.0.1:5001`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().StringVar(&agentListen, "listen", "", "Address to listen on (overrides agent.listen)")
}

func runAgent(_ *cobra.Command, _ []string) error {
	if agentListen != "" {
		cfg.Agent.Listen = agentListen
	}
	if err := cfg.ValidateForAgent(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupLogging(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	tc := cfg.Tracing
	tc.ServiceName = "deskctl-agent"
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("creating tracing provider: %w", err)
	}
	defer shutdownTracing(provider)

	for _, dir := range []string{cfg.Agent.UploadDir, cfg.Agent.ScreenshotDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	system := agent.NewShellSystem(agent.ShellSystemConfig{
		Commands:      agent.MergeCommands(cfg.Agent.Commands),
		ScreenshotDir: cfg.Agent.ScreenshotDir,
	})
	handler := agent.NewHandler(agent.HandlerConfig{
		Token:          cfg.AuthToken,
		System:         system,
		UploadDir:      cfg.Agent.UploadDir,
		ScreenshotDir:  cfg.Agent.ScreenshotDir,
		DownloadRoots:  cfg.Agent.DownloadRoots,
		MaxUploadBytes: cfg.Agent.MaxUploadBytes,
		Tracer:         provider.Tracer(),
	})

	server, err := agent.NewServer(agent.ServerConfig{Addr: cfg.Agent.Listen, Handler: handler})
	if err != nil {
		return fmt.Errorf("creating agent server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	printAgentBanner(server.Addr())

	select {
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatAgent, "Error stopping agent server", err)
	}

	fmt.Println("Agent stopped")
	return nil
}

func printAgentBanner(addr string) {
	fmt.Println("deskctl agent")
	fmt.Printf("  listening on   %s\n", addr)
	fmt.Printf("  auth token     %s\n", agent.MaskToken(cfg.AuthToken))
	fmt.Printf("  uploads        %s\n", cfg.Agent.UploadDir)
	fmt.Printf("  screenshots    %s\n", cfg.Agent.ScreenshotDir)
	if len(cfg.Agent.DownloadRoots) > 0 {
		fmt.Printf("  download roots %v\n", cfg.Agent.DownloadRoots)
	}
	fmt.Println("Press Ctrl+C to stop")
}
