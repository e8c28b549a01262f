package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/log"
)

// System performs commands on this machine.
type System interface {
	Execute(ctx context.Context, name string, params map[string]any) command.Result
	Status(ctx context.Context) (command.SystemStatus, error)
}

// Invocation is one resolved process launch.
type Invocation struct {
	Argv   []string
	Stdin  string
	Detach bool
}

// Runner starts processes. It returns stdout for attached invocations.
type Runner interface {
	Run(ctx context.Context, inv Invocation) ([]byte, error)
}

// ExecRunner runs invocations with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, inv Invocation) ([]byte, error) {
	if len(inv.Argv) == 0 {
		return nil, errors.New("empty argv")
	}

	if inv.Detach {
		//nolint:gosec // G204: argv comes from the operator's command table
		cmd := exec.Command(inv.Argv[0], inv.Argv[1:]...)
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start %s: %w", inv.Argv[0], err)
		}
		go func() { _ = cmd.Wait() }()
		return nil, nil
	}

	//nolint:gosec // G204: argv comes from the operator's command table
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", inv.Argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", inv.Argv[0], err)
	}
	return stdout.Bytes(), nil
}

// processLimit is how many rows the processes command returns.
const processLimit = 10

// ShellSystem runs commands from a command table. Status, processes and
// network are answered by the Probe instead.
type ShellSystem struct {
	commands      map[string]CommandSpec
	screenshotDir string
	runner        Runner
	probe         Probe
	now           func() time.Time
}

var _ System = (*ShellSystem)(nil)

// ShellSystemConfig configures a ShellSystem.
type ShellSystemConfig struct {
	Commands      map[string]CommandSpec
	ScreenshotDir string
	Runner        Runner
	Probe         Probe
	Now           func() time.Time
}

// NewShellSystem builds a ShellSystem, filling in the exec runner and the
// gopsutil probe when not given.
func NewShellSystem(cfg ShellSystemConfig) *ShellSystem {
	s := &ShellSystem{
		commands:      cfg.Commands,
		screenshotDir: cfg.ScreenshotDir,
		runner:        cfg.Runner,
		probe:         cfg.Probe,
		now:           cfg.Now,
	}
	if s.commands == nil {
		s.commands = MergeCommands(nil)
	}
	if s.runner == nil {
		s.runner = ExecRunner{}
	}
	if s.probe == nil {
		s.probe = NewHostProbe()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Status implements System.
func (s *ShellSystem) Status(ctx context.Context) (command.SystemStatus, error) {
	return s.probe.Status(ctx)
}

// Execute implements System. Failures are reported in the Result.
func (s *ShellSystem) Execute(ctx context.Context, name string, params map[string]any) command.Result {
	switch name {
	case command.Processes:
		return s.processes(ctx)
	case command.Network:
		return s.network(ctx)
	}

	spec, ok := s.commands[name]
	if !ok || len(spec.Argv) == 0 {
		return command.Fail("Unknown command: " + name)
	}

	vars, err := s.placeholders(name, params)
	if err != nil {
		return command.Fail(err.Error())
	}

	inv := Invocation{
		Argv:   make([]string, len(spec.Argv)),
		Stdin:  expand(spec.Stdin, vars),
		Detach: spec.Detach,
	}
	for i, arg := range spec.Argv {
		inv.Argv[i] = expand(arg, vars)
	}

	log.Debug(log.CatAgent, "running command", "command", name, "argv", strings.Join(inv.Argv, " "))

	out, err := s.runner.Run(ctx, inv)
	if err != nil {
		log.ErrorErr(log.CatAgent, "command failed", err, "command", name)
		return command.Fail(fmt.Sprintf("Failed: %v", err))
	}

	res := command.OK(expand(spec.Message, vars))
	if spec.Capture {
		text := strings.TrimSpace(string(out))
		switch {
		case spec.CaptureAs != "":
			res = res.With(spec.CaptureAs, text)
		case res.Message == "":
			res.Message = text
		case text != "":
			res.Message += "\n\n" + text
		}
	}
	if file, ok := vars[PlaceholderFile]; ok {
		res = res.With("file", filepath.Base(file))
	}
	return res
}

// placeholders validates params for name and returns the substitution map.
func (s *ShellSystem) placeholders(name string, params map[string]any) (map[string]string, error) {
	vars := map[string]string{}
	switch name {
	case command.Volume:
		level, err := command.VolumeLevel(params)
		if err != nil {
			return nil, err
		}
		vars[PlaceholderLevel] = strconv.Itoa(level)
		vars[PlaceholderLevelU16] = strconv.Itoa(level * 65535 / 100)
	case command.Copy:
		text, err := command.Text(params)
		if err != nil {
			return nil, err
		}
		vars[PlaceholderText] = text
	case command.Screenshot:
		if err := os.MkdirAll(s.screenshotDir, 0o750); err != nil {
			return nil, fmt.Errorf("create screenshot dir: %w", err)
		}
		vars[PlaceholderFile] = filepath.Join(s.screenshotDir, fmt.Sprintf("screenshot_%d.png", s.now().Unix()))
	}
	return vars, nil
}

func expand(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, k, v)
	}
	return s
}

func (s *ShellSystem) processes(ctx context.Context) command.Result {
	procs, err := s.probe.Processes(ctx, processLimit)
	if err != nil {
		return command.Fail(fmt.Sprintf("Failed to list processes: %v", err))
	}
	var b strings.Builder
	for _, p := range procs {
		fmt.Fprintf(&b, "%d %s  cpu %.1f%%  mem %.1f%%\n", p.PID, p.Name, p.CPU, p.Memory)
	}
	res := command.OK("💻 Process List")
	if b.Len() > 0 {
		res.Message += "\n\n" + strings.TrimRight(b.String(), "\n")
	}
	return res.With("count", len(procs))
}

func (s *ShellSystem) network(ctx context.Context) command.Result {
	info, err := s.probe.Network(ctx)
	if err != nil {
		return command.Fail(fmt.Sprintf("Failed to get network info: %v", err))
	}
	var b strings.Builder
	for _, iface := range info.Interfaces {
		fmt.Fprintf(&b, "%s: %s\n", iface.Name, strings.Join(iface.Addrs, ", "))
	}
	fmt.Fprintf(&b, "⬆️ %s sent  ⬇️ %s received", humanize.Bytes(info.BytesSent), humanize.Bytes(info.BytesRecv))
	return command.OK("🌐 Network Information\n\n" + b.String())
}
