package agent

import (
	"maps"
	"runtime"

	"github.com/zjrosen/deskctl/internal/command"
)

// Placeholders substituted into CommandSpec argv, stdin and message.
const (
	PlaceholderLevel = "{level}"
	// PlaceholderLevelU16 is the level scaled to 0-65535 for nircmd.
	PlaceholderLevelU16 = "{level_u16}"
	PlaceholderText  = "{text}"
	PlaceholderFile  = "{file}"
)

// CommandSpec describes how the agent performs one named command.
type CommandSpec struct {
	// Argv is the program and its arguments.
	Argv []string `mapstructure:"argv" yaml:"argv"`
	// Stdin is written to the process, e.g. "{text}" for clipboard copy.
	Stdin string `mapstructure:"stdin" yaml:"stdin,omitempty"`
	// Capture returns trimmed stdout in the result.
	Capture bool `mapstructure:"capture" yaml:"capture,omitempty"`
	// CaptureAs names the result attribute that receives stdout. Empty means
	// stdout becomes the message.
	CaptureAs string `mapstructure:"capture_as" yaml:"capture_as,omitempty"`
	// Detach starts the process without waiting, for sleep and shutdown.
	Detach bool `mapstructure:"detach" yaml:"detach,omitempty"`
	// Message is the success message.
	Message string `mapstructure:"message" yaml:"message,omitempty"`
}

// DefaultCommands returns the built-in command table for goos.
func DefaultCommands(goos string) map[string]CommandSpec {
	switch goos {
	case "darwin":
		return darwinCommands()
	case "windows":
		return windowsCommands()
	default:
		return linuxCommands()
	}
}

// MergeCommands overlays configured specs on the defaults for this OS.
func MergeCommands(overrides map[string]CommandSpec) map[string]CommandSpec {
	out := DefaultCommands(runtime.GOOS)
	maps.Copy(out, overrides)
	return out
}

func linuxCommands() map[string]CommandSpec {
	return map[string]CommandSpec{
		command.Lock:       {Argv: []string{"loginctl", "lock-session"}, Message: "🔒 Screen locked"},
		command.Volume:     {Argv: []string{"amixer", "set", "Master", "{level}%"}, Message: "🔊 Volume set to {level}%"},
		command.Mute:       {Argv: []string{"amixer", "set", "Master", "toggle"}, Message: "🔇 Mute toggled"},
		command.Copy:       {Argv: []string{"xclip", "-selection", "clipboard"}, Stdin: PlaceholderText, Message: "📋 Text copied to clipboard"},
		command.Paste:      {Argv: []string{"xclip", "-selection", "clipboard", "-o"}, Capture: true, CaptureAs: "content", Message: "Clipboard content retrieved"},
		command.Screenshot: {Argv: []string{"spectacle", "-b", "-n", "-o", PlaceholderFile}, Message: "📸 Screenshot captured"},
		command.Sleep:      {Argv: []string{"systemctl", "suspend"}, Detach: true, Message: "😴 Going to sleep"},
		command.Shutdown:   {Argv: []string{"shutdown", "-h", "now"}, Detach: true, Message: "⚠️ Shutting down..."},
		command.PlayPause:  {Argv: []string{"playerctl", "play-pause"}, Message: "⏯️ Play/Pause toggled"},
		command.Next:       {Argv: []string{"playerctl", "next"}, Message: "⏭️ Next track"},
		command.Previous:   {Argv: []string{"playerctl", "previous"}, Message: "⏮️ Previous track"},
		command.Stop:       {Argv: []string{"playerctl", "stop"}, Message: "⏹️ Playback stopped"},
		command.Battery:    {Argv: []string{"upower", "-i", "/org/freedesktop/UPower/devices/battery_BAT0"}, Capture: true, Message: "🔋 Battery Status"},
	}
}

func darwinCommands() map[string]CommandSpec {
	return map[string]CommandSpec{
		command.Lock:       {Argv: []string{"pmset", "displaysleepnow"}, Message: "🔒 Screen locked"},
		command.Volume:     {Argv: []string{"osascript", "-e", "set volume output volume {level}"}, Message: "🔊 Volume set to {level}%"},
		command.Mute:       {Argv: []string{"osascript", "-e", "set volume with output muted"}, Message: "🔇 Mute toggled"},
		command.Copy:       {Argv: []string{"pbcopy"}, Stdin: PlaceholderText, Message: "📋 Text copied to clipboard"},
		command.Paste:      {Argv: []string{"pbpaste"}, Capture: true, CaptureAs: "content", Message: "Clipboard content retrieved"},
		command.Screenshot: {Argv: []string{"screencapture", "-x", PlaceholderFile}, Message: "📸 Screenshot captured"},
		command.Sleep:      {Argv: []string{"pmset", "sleepnow"}, Detach: true, Message: "😴 Going to sleep"},
		command.Shutdown:   {Argv: []string{"sudo", "shutdown", "-h", "now"}, Detach: true, Message: "⚠️ Shutting down..."},
		command.PlayPause:  {Argv: []string{"osascript", "-e", `tell application "Music" to playpause`}, Message: "⏯️ Play/Pause toggled"},
		command.Next:       {Argv: []string{"osascript", "-e", `tell application "Music" to next track`}, Message: "⏭️ Next track"},
		command.Previous:   {Argv: []string{"osascript", "-e", `tell application "Music" to previous track`}, Message: "⏮️ Previous track"},
		command.Stop:       {Argv: []string{"osascript", "-e", `tell application "Music" to stop`}, Message: "⏹️ Playback stopped"},
		command.Battery:    {Argv: []string{"pmset", "-g", "batt"}, Capture: true, Message: "🔋 Battery Status"},
	}
}

func windowsCommands() map[string]CommandSpec {
	return map[string]CommandSpec{
		command.Lock:       {Argv: []string{"rundll32.exe", "user32.dll,LockWorkStation"}, Message: "🔒 Screen locked"},
		command.Volume:     {Argv: []string{"nircmd.exe", "setsysvolume", PlaceholderLevelU16}, Message: "🔊 Volume set to {level}%"},
		command.Mute:       {Argv: []string{"nircmd.exe", "mutesysvolume", "2"}, Message: "🔇 Mute toggled"},
		command.Copy:       {Argv: []string{"clip"}, Stdin: PlaceholderText, Message: "📋 Text copied to clipboard"},
		command.Paste:      {Argv: []string{"powershell", "-NoProfile", "-Command", "Get-Clipboard"}, Capture: true, CaptureAs: "content", Message: "Clipboard content retrieved"},
		command.Screenshot: {Argv: []string{"nircmd.exe", "savescreenshot", PlaceholderFile}, Message: "📸 Screenshot captured"},
		command.Sleep:      {Argv: []string{"rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"}, Detach: true, Message: "😴 Going to sleep"},
		command.Shutdown:   {Argv: []string{"shutdown", "/s", "/t", "5"}, Detach: true, Message: "⚠️ Shutting down..."},
		command.PlayPause:  {Argv: []string{"nircmd.exe", "sendkeypress", "0xB3"}, Message: "⏯️ Play/Pause toggled"},
		command.Next:       {Argv: []string{"nircmd.exe", "sendkeypress", "0xB0"}, Message: "⏭️ Next track"},
		command.Previous:   {Argv: []string{"nircmd.exe", "sendkeypress", "0xB1"}, Message: "⏮️ Previous track"},
		command.Stop:       {Argv: []string{"nircmd.exe", "sendkeypress", "0xB2"}, Message: "⏹️ Playback stopped"},
		command.Battery:    {Argv: []string{"powershell", "-NoProfile", "-Command", "(Get-CimInstance Win32_Battery).EstimatedChargeRemaining"}, Capture: true, Message: "🔋 Battery Status"},
	}
}
