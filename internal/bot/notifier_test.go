package bot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/deskctl/internal/bot"
	"github.com/zjrosen/deskctl/internal/bot/mocks"
	"github.com/zjrosen/deskctl/internal/command"
)

func TestChatNotifier_ResultEditsProgressMessage(t *testing.T) {
	m := mocks.NewMockMessenger(t)
	m.EXPECT().Send(mock.Anything, int64(1), "🔊 Setting volume to 75%...", bot.Keyboard(nil)).Return(7, nil).Once()
	m.EXPECT().Edit(mock.Anything, int64(1), 7, "✅ Volume set to 75%").Return(nil).Once()

	n := bot.NewChatNotifier(m, 0)
	ctx := context.Background()
	require.NoError(t, n.NotifyProgress(ctx, 1, "🔊 Setting volume to 75%..."))
	require.NoError(t, n.NotifyResult(ctx, 1, command.OK("Volume set to 75%")))
}

func TestChatNotifier_ResultWithoutProgressSends(t *testing.T) {
	m := mocks.NewMockMessenger(t)
	m.EXPECT().Send(mock.Anything, int64(1), "❌ Failed: exit status 1", bot.Keyboard(nil)).Return(3, nil).Once()

	n := bot.NewChatNotifier(m, 0)
	require.NoError(t, n.NotifyResult(context.Background(), 1, command.Fail("Failed: exit status 1")))
}

func TestChatNotifier_EditFailureFallsBackToSend(t *testing.T) {
	m := mocks.NewMockMessenger(t)
	m.EXPECT().Send(mock.Anything, int64(1), "🔒 Locking screen...", bot.Keyboard(nil)).Return(4, nil).Once()
	m.EXPECT().Edit(mock.Anything, int64(1), 4, "✅ Screen locked").Return(errors.New("message to edit not found")).Once()
	m.EXPECT().Send(mock.Anything, int64(1), "✅ Screen locked", bot.Keyboard(nil)).Return(5, nil).Once()

	n := bot.NewChatNotifier(m, 0)
	ctx := context.Background()
	require.NoError(t, n.NotifyProgress(ctx, 1, "🔒 Locking screen..."))
	require.NoError(t, n.NotifyResult(ctx, 1, command.OK("Screen locked")))
}

func TestChatNotifier_SupersededNoticeIsDeleted(t *testing.T) {
	m := mocks.NewMockMessenger(t)
	m.EXPECT().Send(mock.Anything, int64(1), bot.MsgSuperseded, bot.Keyboard(nil)).Return(9, nil).Once()
	m.EXPECT().Delete(mock.Anything, int64(1), 9).Return(nil).Once()

	n := bot.NewChatNotifier(m, time.Millisecond)
	require.NoError(t, n.NotifySuperseded(context.Background(), 1))
	n.Wait()
}

func TestChatNotifier_SupersededSendFailure(t *testing.T) {
	m := mocks.NewMockMessenger(t)
	m.EXPECT().Send(mock.Anything, int64(1), bot.MsgSuperseded, bot.Keyboard(nil)).Return(0, errors.New("network down")).Once()

	n := bot.NewChatNotifier(m, time.Millisecond)
	require.EqualError(t, n.NotifySuperseded(context.Background(), 1), "network down")
	n.Wait()
}

func TestChatNotifier_DismissProgress(t *testing.T) {
	m := mocks.NewMockMessenger(t)
	m.EXPECT().Send(mock.Anything, int64(2), "📥 Retrieving file from PC...", bot.Keyboard(nil)).Return(11, nil).Once()
	m.EXPECT().Delete(mock.Anything, int64(2), 11).Return(nil).Once()

	n := bot.NewChatNotifier(m, 0)
	ctx := context.Background()
	require.NoError(t, n.DismissProgress(ctx, 2), "nothing to dismiss yet")
	require.NoError(t, n.NotifyProgress(ctx, 2, "📥 Retrieving file from PC..."))
	require.NoError(t, n.DismissProgress(ctx, 2))
	require.NoError(t, n.DismissProgress(ctx, 2), "already dismissed")
}
