package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainAdmin "github.com/AzielCF/az-telebox/domains/admin"
	domainMessenger "github.com/AzielCF/az-telebox/domains/messenger"
	domainSettings "github.com/AzielCF/az-telebox/domains/settings"
	domainUser "github.com/AzielCF/az-telebox/domains/user"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
	"github.com/AzielCF/az-telebox/validations"
)

const (
	adminDeniedText = "❌ You do not have admin access."

	videoSetupText = "🎬 <b>Tutorial Video Setup</b>\n\n" +
		"Please send the <b>tutorial video</b> in the next message."

	videoSetDoneText = "✅ <b>Tutorial video successfully set!</b>"

	userCountFailText = "❌ Could not fetch user count from DB."

	broadcastUsageText = "📢 <b>Start Broadcast</b>\n\n" +
		"Write the message you want to send to all users after <code>/broadcast</code>.\n" +
		"Example: <code>/broadcast Our bot is now faster!</code>"

	broadcastStartText = "🔄 Starting broadcast... Please wait."
)

type adminService struct {
	allowList []int64
	users     domainUser.IUserRepository
	settings  domainSettings.ISettingsRepository
	messenger domainMessenger.Messenger

	broadcastPause time.Duration
	nowFn          func() time.Time

	mu            sync.Mutex
	pendingVideos map[int64]time.Time
}

// NewAdminService builds the admin console over the statically configured
// allow-list. Pending /setvideo prompts are in-process only.
func NewAdminService(
	allowList []int64,
	users domainUser.IUserRepository,
	settings domainSettings.ISettingsRepository,
	messenger domainMessenger.Messenger,
	broadcastPause time.Duration,
) domainAdmin.IAdminUsecase {
	return &adminService{
		allowList:      allowList,
		users:          users,
		settings:       settings,
		messenger:      messenger,
		broadcastPause: broadcastPause,
		nowFn:          func() time.Time { return time.Now().UTC() },
		pendingVideos:  make(map[int64]time.Time),
	}
}

func (s *adminService) IsAdmin(id int64) bool {
	for _, admin := range s.allowList {
		if admin == id {
			return true
		}
	}
	return false
}

func (s *adminService) SetTutorialVideo(ctx context.Context, adminID int64, fileID string) error {
	if !s.IsAdmin(adminID) {
		return pkgError.UnauthorizedError("caller is not on the admin allow-list")
	}
	if err := validations.ValidateTutorialVideo(ctx, fileID); err != nil {
		return err
	}
	if err := s.settings.Set(ctx, domainSettings.KeyTutorialVideo, fileID); err != nil {
		return err
	}
	logrus.Infof("[ADMIN] Tutorial video updated by %d", adminID)
	return nil
}

func (s *adminService) GetTutorialVideo(ctx context.Context) (string, error) {
	return s.settings.Get(ctx, domainSettings.KeyTutorialVideo)
}

func (s *adminService) UserCount(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func (s *adminService) Broadcast(ctx context.Context, adminID int64, text string) (domainAdmin.BroadcastResult, error) {
	if !s.IsAdmin(adminID) {
		return domainAdmin.BroadcastResult{}, pkgError.UnauthorizedError("caller is not on the admin allow-list")
	}
	if err := validations.ValidateBroadcastText(ctx, text); err != nil {
		return domainAdmin.BroadcastResult{}, err
	}

	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return domainAdmin.BroadcastResult{}, err
	}

	runID := uuid.NewString()
	logrus.Infof("[ADMIN] Broadcast %s started, %d recipients", runID, len(ids))

	var result domainAdmin.BroadcastResult
	for _, id := range ids {
		select {
		case <-ctx.Done():
			logrus.Warnf("[ADMIN] Broadcast %s aborted after %d sends", runID, result.Sent)
			return result, ctx.Err()
		default:
		}

		_, sendErr := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID: id,
			Text:   text,
		})
		if sendErr != nil {
			result.Failed++
			continue
		}
		result.Sent++

		// Small pause between sends keeps the bot under the platform's
		// per-second send limits.
		if s.broadcastPause > 0 {
			time.Sleep(s.broadcastPause)
		}
	}

	logrus.Infof("[ADMIN] Broadcast %s finished: %d sent, %d failed", runID, result.Sent, result.Failed)
	return result, nil
}

func (s *adminService) BeginVideoSetup(ctx context.Context, adminID int64) error {
	if !s.IsAdmin(adminID) {
		return pkgError.UnauthorizedError("caller is not on the admin allow-list")
	}
	s.mu.Lock()
	s.pendingVideos[adminID] = s.nowFn().Add(domainAdmin.PendingActionTTL)
	s.mu.Unlock()
	return nil
}

func (s *adminService) ConsumePendingVideo(ctx context.Context, adminID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.pendingVideos[adminID]
	if !ok {
		return false
	}
	delete(s.pendingVideos, adminID)
	return s.nowFn().Before(deadline)
}

func (s *adminService) HandleSetVideoCommand(ctx context.Context, adminID, chatID int64) error {
	if !s.IsAdmin(adminID) {
		return s.replyDenied(ctx, chatID)
	}

	if err := s.BeginVideoSetup(ctx, adminID); err != nil {
		return err
	}

	_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: chatID,
		Text:   videoSetupText,
	})
	return err
}

func (s *adminService) HandleVideoMessage(ctx context.Context, senderID, chatID int64, fileID string) error {
	// Videos from non-admins are regular chat traffic, not commands.
	if !s.IsAdmin(senderID) {
		return nil
	}
	if !s.ConsumePendingVideo(ctx, senderID) {
		return nil
	}

	if err := s.SetTutorialVideo(ctx, senderID, fileID); err != nil {
		return err
	}

	_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: chatID,
		Text:   videoSetDoneText,
	})
	return err
}

func (s *adminService) HandleUserCountCommand(ctx context.Context, adminID, chatID int64) error {
	if !s.IsAdmin(adminID) {
		return s.replyDenied(ctx, chatID)
	}

	count, err := s.UserCount(ctx)
	if err != nil {
		logrus.WithError(err).Error("[ADMIN] User count lookup failed")
		_, sendErr := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID: chatID,
			Text:   userCountFailText,
		})
		return sendErr
	}

	_, err = s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: chatID,
		Text:   fmt.Sprintf("👥 <b>Total User Count:</b> %s users.", humanize.Comma(count)),
	})
	return err
}

func (s *adminService) HandleBroadcastCommand(ctx context.Context, adminID, chatID int64, text string) error {
	if !s.IsAdmin(adminID) {
		return s.replyDenied(ctx, chatID)
	}

	if text == "" {
		_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID: chatID,
			Text:   broadcastUsageText,
		})
		return err
	}

	status, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: chatID,
		Text:   broadcastStartText,
	})
	if err != nil {
		return err
	}

	result, err := s.Broadcast(ctx, adminID, text)
	if err != nil {
		return err
	}

	return s.messenger.EditText(ctx, chatID, status.MessageID, fmt.Sprintf(
		"✅ <b>Broadcast successfully completed!</b>\nSuccessful: %d\nFailed: %d",
		result.Sent, result.Failed,
	))
}

func (s *adminService) replyDenied(ctx context.Context, chatID int64) error {
	_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: chatID,
		Text:   adminDeniedText,
	})
	return err
}
