package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/coordinator"
	"github.com/zjrosen/deskctl/internal/executor"
	"github.com/zjrosen/deskctl/internal/log"
)

// ErrCommandFailed wraps a failure the agent reported in its Result.
var ErrCommandFailed = errors.New("command failed")

// runCommand sends one command to the agent and reports its result.
func (b *Bot) runCommand(chatID int64, name string, params map[string]any, progress string) coordinator.Factory {
	return func(ctx context.Context) error {
		b.progress(ctx, chatID, progress)

		res, err := b.agent.Execute(ctx, name, params)
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		return b.finish(ctx, chatID, res)
	}
}

func (b *Bot) systemStatus(chatID int64) coordinator.Factory {
	return func(ctx context.Context) error {
		b.progress(ctx, chatID, "🔍 Checking system...")

		st, err := b.status.Get(ctx, chatID)
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		return b.finish(ctx, chatID, command.OK(formatStatus(st)))
	}
}

func formatStatus(st command.SystemStatus) string {
	return fmt.Sprintf("System Online\n\n"+
		"🖥️ Host: %s\n"+
		"💻 OS: %s\n"+
		"📊 CPU: %.1f%%\n"+
		"💾 RAM: %.1f%%\n"+
		"⏱️ Uptime: %s",
		st.Hostname, st.OS, st.CPU, st.Memory, st.Uptime)
}

// screenshot captures the screen on the PC and sends it back as a photo.
func (b *Bot) screenshot(chatID int64) coordinator.Factory {
	return func(ctx context.Context) error {
		b.progress(ctx, chatID, "📸 Taking screenshot...")

		res, err := b.agent.Execute(ctx, command.Screenshot, nil)
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		file := res.String("file")
		if !res.Succeeded() || file == "" {
			if res.Succeeded() {
				res = command.Fail("Screenshot taken but no file was returned")
			}
			return b.finish(ctx, chatID, res)
		}

		shot, err := b.agent.Screenshot(ctx, file)
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		if err := ctx.Err(); err != nil {
			return b.cancelled(ctx, chatID, err)
		}

		if err := b.messenger.SendPhoto(ctx, chatID, shot.Name, shot.Data, "📸 Screenshot"); err != nil {
			return b.fail(ctx, chatID, fmt.Errorf("send screenshot: %w", err))
		}
		b.dismiss(ctx, chatID)
		return nil
	}
}

// paste reads the PC clipboard into the chat.
func (b *Bot) paste(chatID int64) coordinator.Factory {
	return func(ctx context.Context) error {
		b.progress(ctx, chatID, "📋 Getting clipboard...")

		res, err := b.agent.Execute(ctx, command.Paste, nil)
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		if res.Succeeded() {
			content := res.String("content")
			if content == "" {
				content = "(empty)"
			}
			res.Message = "Clipboard:\n\n" + content
		}
		return b.finish(ctx, chatID, res)
	}
}

// download fetches a file from the PC and sends it as a document.
func (b *Bot) download(chatID int64, path string) coordinator.Factory {
	return func(ctx context.Context) error {
		b.progress(ctx, chatID, "📥 Retrieving file from PC...")

		f, err := b.agent.Fetch(ctx, path)
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		if err := ctx.Err(); err != nil {
			return b.cancelled(ctx, chatID, err)
		}

		if err := b.messenger.SendDocument(ctx, chatID, f.Name, f.Data); err != nil {
			return b.fail(ctx, chatID, fmt.Errorf("send file: %w", err))
		}
		b.dismiss(ctx, chatID)
		return nil
	}
}

// upload asks the agent to pull an attachment from the chat platform.
func (b *Bot) upload(chatID int64, att Attachment, progress, title string) coordinator.Factory {
	return func(ctx context.Context) error {
		b.progress(ctx, chatID, progress)

		url, err := b.messenger.FileURL(ctx, att.FileID)
		if err != nil {
			return b.fail(ctx, chatID, fmt.Errorf("resolve file url: %w", err))
		}

		res, err := b.agent.Upload(ctx, command.UploadRequest{Filename: att.Name, URL: url, Size: att.Size})
		if err != nil {
			return b.fail(ctx, chatID, err)
		}
		if res.Succeeded() {
			res.Message = title + "\n\n📁 " + res.String("path")
		}
		return b.finish(ctx, chatID, res)
	}
}

func (b *Bot) progress(ctx context.Context, chatID int64, text string) {
	if err := b.notifier.NotifyProgress(ctx, chatID, text); err != nil {
		log.ErrorErr(log.CatBot, "progress notice failed", err, "chat", chatID)
	}
}

// finish reports res unless the command was cancelled in the meantime.
// A failed Result becomes an ErrCommandFailed error.
func (b *Bot) finish(ctx context.Context, chatID int64, res command.Result) error {
	if err := ctx.Err(); err != nil {
		return b.cancelled(ctx, chatID, err)
	}
	if err := b.notifier.NotifyResult(ctx, chatID, res); err != nil {
		log.ErrorErr(log.CatBot, "result notice failed", err, "chat", chatID)
	}
	if !res.Succeeded() {
		return fmt.Errorf("%w: %s", ErrCommandFailed, res.Message)
	}
	return nil
}

// fail reports a transport or chat error and returns it.
func (b *Bot) fail(ctx context.Context, chatID int64, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return b.cancelled(ctx, chatID, ctxErr)
	}
	if notifyErr := b.notifier.NotifyResult(ctx, chatID, executor.ErrorResult(err)); notifyErr != nil {
		log.ErrorErr(log.CatBot, "result notice failed", notifyErr, "chat", chatID)
	}
	return err
}

// cancelled removes the progress message of a command that was cancelled.
// The superseding command's notice tells the owner what happened.
func (b *Bot) cancelled(ctx context.Context, chatID int64, err error) error {
	b.dismiss(context.WithoutCancel(ctx), chatID)
	return err
}

func (b *Bot) dismiss(ctx context.Context, chatID int64) {
	if err := b.notifier.DismissProgress(ctx, chatID); err != nil {
		log.ErrorErr(log.CatBot, "dismiss progress failed", err, "chat", chatID)
	}
}
