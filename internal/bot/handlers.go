package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/log"
)

// Chat replies that are not command results.
const (
	MsgUnauthorized = "❌ Unauthorized. This bot is for personal use only."
	MsgUnexpected   = "❌ Unexpected error. Please try again."
	MsgUnknownCmd   = "❓ Unknown command.\nSend /help for the command list or use the keyboard buttons below."
	MsgUnknownText  = "🤖 I didn't understand that.\nUse the keyboard buttons or send /help."
	MsgCallbackGone = "ℹ️ The menu now lives in the keyboard below the chat.\nSend /start to open the main menu."

	MsgWelcome = "🤖 deskctl\n\nControl your PC from this chat with the buttons below.\n\nChoose a category:"
	MsgHelp    = "📖 Help & Commands\n\n" +
		"Text commands:\n" +
		"/start - Show main menu\n" +
		"/menu - Show main menu\n" +
		"/status - System status\n" +
		"/volume <0-100> - Set volume\n" +
		"/copy <text> - Copy text\n" +
		"/help - Show this help\n\n" +
		"Send any file or photo to upload it to the PC.\n" +
		"Send a full path, or use the Files menu, to download a file."

	MsgVolumeUsage = "❌ Usage: /volume 50 (0-100)"
	MsgCopyUsage   = "❌ Usage: /copy your text here"

	MsgCopyPrompt     = "✍️ Copy Text to Clipboard\n\nSend me the text you want to copy.\nOr use: /copy your text here"
	MsgUploadPrompt   = "📤 Upload File to PC\n\nSend me any file or photo and I will save it to your PC."
	MsgDownloadPrompt = "📥 Download File from PC\n\nSend the full file path, for example:\n/home/user/document.pdf\nC:\\Users\\user\\file.txt"

	MsgShutdownWarning = "⚠️ SHUTDOWN WARNING\n\nAre you sure you want to shut down your PC?\n\nThis action cannot be undone!"
	MsgShutdownExpired = "⌛ Shutdown confirmation expired. Press ⚠️ Shutdown again."
	MsgShutdownAborted = "✅ Shutdown cancelled."
)

type promptKind int

const (
	promptCopy promptKind = iota + 1
	promptDownload
	promptShutdown
)

// prompt is a pending request for the owner's next input.
type prompt struct {
	kind promptKind
}

// Handle processes one update. It returns once the update is routed;
// commands that reach the PC keep running in the background.
func (b *Bot) Handle(ctx context.Context, u Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatBot, "handler panicked", "chat", u.ChatID, "panic", r, "stack", string(debug.Stack()))
			b.reply(ctx, u.ChatID, MsgUnexpected, nil)
		}
	}()

	if u.UserID != b.cfg.OwnerID {
		log.Warn(log.CatBot, "unauthorized access attempt", "user", u.UserID, "chat", u.ChatID)
		b.reply(ctx, u.ChatID, MsgUnauthorized, nil)
		return
	}

	switch {
	case u.CallbackID != "":
		b.reply(ctx, u.ChatID, MsgCallbackGone, nil)
	case u.Document != nil:
		b.exclusive(ctx, u.ChatID, "upload", b.upload(u.ChatID, *u.Document, "📥 Uploading file to PC...", "File Uploaded"))
	case u.Photo != nil:
		photo := *u.Photo
		photo.Name = fmt.Sprintf("photo_%d.jpg", u.Date.Unix())
		b.exclusive(ctx, u.ChatID, "upload", b.upload(u.ChatID, photo, "📸 Saving photo to PC...", "Photo Saved"))
	case strings.HasPrefix(u.Text, "/"):
		b.handleCommand(ctx, u.ChatID, u.Text)
	default:
		b.handleText(ctx, u.ChatID, u.Text)
	}
}

// handleCommand routes "/name args". A "@botname" suffix on the name is
// ignored.
func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	head, args, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	name, _, _ := strings.Cut(head, "@")

	fn, ok := b.commands[strings.ToLower(name)]
	if !ok {
		// Absolute Unix paths look like commands.
		if p, pending := b.prompts.Get(ctx, chatID); (pending && p.kind == promptDownload) || strings.Contains(head, "/") {
			b.handleText(ctx, chatID, text)
			return
		}
		log.Info(log.CatBot, "unknown command", "chat", chatID, "command", name, "error", command.ErrUnknownCommand)
		b.reply(ctx, chatID, MsgUnknownCmd, nil)
		return
	}
	fn(ctx, chatID, strings.TrimSpace(args))
}

func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	if fn, ok := b.buttons[text]; ok {
		fn(ctx, chatID)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Info(log.CatBot, "unrecognized message", "chat", chatID)
		b.reply(ctx, chatID, MsgUnknownText, nil)
		return
	}

	// Any other input drops a pending shutdown confirmation.
	if p, ok := b.prompts.Take(ctx, chatID); ok {
		switch p.kind {
		case promptCopy:
			b.copyText(ctx, chatID, text)
			return
		case promptDownload:
			b.exclusive(ctx, chatID, "download", b.download(chatID, text))
			return
		}
	}

	if strings.ContainsAny(text, `/\`) {
		b.exclusive(ctx, chatID, "download", b.download(chatID, text))
		return
	}
	b.copyText(ctx, chatID, text)
}

func (b *Bot) copyText(ctx context.Context, chatID int64, text string) {
	b.exclusive(ctx, chatID, command.Copy,
		b.runCommand(chatID, command.Copy, map[string]any{"text": text}, "⏳ Copying to clipboard..."))
}

func (b *Bot) registerCommands() {
	b.commands = map[string]func(ctx context.Context, chatID int64, args string){
		"start": b.showMenu,
		"menu":  b.showMenu,
		"help": func(ctx context.Context, chatID int64, _ string) {
			b.reply(ctx, chatID, MsgHelp, nil)
		},
		"status": func(ctx context.Context, chatID int64, _ string) {
			b.exclusive(ctx, chatID, "status", b.systemStatus(chatID))
		},
		"volume": func(ctx context.Context, chatID int64, args string) {
			level, err := parseVolume(args)
			if err != nil {
				b.reply(ctx, chatID, MsgVolumeUsage, mediaKeyboard())
				return
			}
			b.setVolume(ctx, chatID, level)
		},
		"copy": func(ctx context.Context, chatID int64, args string) {
			if args == "" {
				b.reply(ctx, chatID, MsgCopyUsage, clipboardKeyboard())
				return
			}
			b.copyText(ctx, chatID, args)
		},
	}
}

func (b *Bot) showMenu(ctx context.Context, chatID int64, _ string) {
	b.reply(ctx, chatID, MsgWelcome, mainKeyboard())
}

// parseVolume reads the first argument of /volume as a level in 0-100.
func parseVolume(args string) (int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: level is required", command.ErrInvalidParams)
	}
	level, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", command.ErrInvalidParams, err)
	}
	return command.VolumeLevel(map[string]any{"level": level})
}

func (b *Bot) setVolume(ctx context.Context, chatID int64, level int) {
	b.exclusive(ctx, chatID, command.Volume, b.runCommand(chatID, command.Volume,
		map[string]any{"level": level}, fmt.Sprintf("🔊 Setting volume to %d%%...", level)))
}

func (b *Bot) registerButtons() {
	menu := func(text string, kb func() Keyboard) func(context.Context, int64) {
		return func(ctx context.Context, chatID int64) {
			b.reply(ctx, chatID, text, kb())
		}
	}
	run := func(name, progress string) func(context.Context, int64) {
		return func(ctx context.Context, chatID int64) {
			b.exclusive(ctx, chatID, name, b.runCommand(chatID, name, nil, progress))
		}
	}
	volume := func(level int) func(context.Context, int64) {
		return func(ctx context.Context, chatID int64) {
			b.setVolume(ctx, chatID, level)
		}
	}
	ask := func(kind promptKind, text string, kb func() Keyboard) func(context.Context, int64) {
		return func(ctx context.Context, chatID int64) {
			b.prompts.Set(ctx, chatID, prompt{kind: kind}, b.cfg.PromptTTL)
			b.reply(ctx, chatID, text, kb())
		}
	}

	b.buttons = map[string]func(ctx context.Context, chatID int64){
		BtnMainMenu:  menu("📱 Main Menu\n\nSelect an option:", mainKeyboard),
		BtnSystem:    menu("🖥️ System Control\n\nChoose an action:", systemKeyboard),
		BtnMedia:     menu("🔊 Media Control\n\nAdjust volume or mute:", mediaKeyboard),
		BtnClipboard: menu("📋 Clipboard Manager\n\nManage clipboard:", clipboardKeyboard),
		BtnFiles:     menu("📁 File Manager\n\nFile operations:", filesKeyboard),
		BtnPlayer:    menu("🎵 Media Player\n\nControl playback:", playerKeyboard),
		BtnHelp: func(ctx context.Context, chatID int64) {
			b.reply(ctx, chatID, MsgHelp, nil)
		},
		BtnStatus: func(ctx context.Context, chatID int64) {
			b.exclusive(ctx, chatID, "status", b.systemStatus(chatID))
		},

		BtnLock:      run(command.Lock, "🔒 Locking screen..."),
		BtnSleep:     run(command.Sleep, "😴 Putting PC to sleep..."),
		BtnMute:      run(command.Mute, "🔇 Toggling mute..."),
		BtnPlayPause: run(command.PlayPause, "⏯️ Toggling playback..."),
		BtnNext:      run(command.Next, "⏭️ Skipping to next track..."),
		BtnPrevious:  run(command.Previous, "⏮️ Going to previous track..."),
		BtnStop:      run(command.Stop, "⏹️ Stopping playback..."),
		BtnBattery:   run(command.Battery, "🔋 Checking battery..."),
		BtnNetwork:   run(command.Network, "🌐 Getting network info..."),
		BtnProcesses: run(command.Processes, "💻 Listing processes..."),

		BtnVolume25:  volume(25),
		BtnVolume50:  volume(50),
		BtnVolume75:  volume(75),
		BtnVolume100: volume(100),

		BtnScreenshot: func(ctx context.Context, chatID int64) {
			b.exclusive(ctx, chatID, command.Screenshot, b.screenshot(chatID))
		},
		BtnPaste: func(ctx context.Context, chatID int64) {
			b.exclusive(ctx, chatID, command.Paste, b.paste(chatID))
		},

		BtnCopyText: ask(promptCopy, MsgCopyPrompt, clipboardKeyboard),
		BtnDownload: ask(promptDownload, MsgDownloadPrompt, filesKeyboard),
		BtnUpload:   menu(MsgUploadPrompt, filesKeyboard),

		BtnShutdown: ask(promptShutdown, MsgShutdownWarning, shutdownKeyboard),
		BtnConfirmShutdown: func(ctx context.Context, chatID int64) {
			p, ok := b.prompts.Take(ctx, chatID)
			if !ok || p.kind != promptShutdown {
				b.reply(ctx, chatID, MsgShutdownExpired, systemKeyboard())
				return
			}
			b.exclusive(ctx, chatID, command.Shutdown, b.runCommand(chatID, command.Shutdown, nil, "⚠️ Shutting down..."))
		},
		BtnCancel: func(ctx context.Context, chatID int64) {
			b.prompts.Delete(ctx, chatID)
			b.reply(ctx, chatID, MsgShutdownAborted, systemKeyboard())
		},
	}
}
