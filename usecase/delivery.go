package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	domainAccess "github.com/AzielCF/az-telebox/domains/access"
	domainDelivery "github.com/AzielCF/az-telebox/domains/delivery"
	domainMessenger "github.com/AzielCF/az-telebox/domains/messenger"
	domainResolver "github.com/AzielCF/az-telebox/domains/resolver"
	domainSettings "github.com/AzielCF/az-telebox/domains/settings"
	domainUser "github.com/AzielCF/az-telebox/domains/user"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
	"github.com/AzielCF/az-telebox/pkg/reaper"
)

const (
	welcomeText = "👋 <b>Welcome! I'm your Terabox Video Viewer Bot.</b>\n\n" +
		"Use this bot to easily view videos from any Terabox link.\n\n" +
		"Please provide your <b>Terabox video link</b> 👇"

	accessGrantedText = "✅ <b>Access successfully added!</b>\n\n" +
		"You can now watch videos for the next <b>24 hours</b>.\n" +
		"Please provide your <b>Terabox video link</b>."

	insufficientBalanceText = "❌ <b>Insufficient Balance</b>\n\n" +
		"You need <b>24-hour access</b> to view Terabox videos. Use the button below to get access."

	loadingText = "🔄 Loading video... Please wait."

	tutorialCaption = "▶️ <b>Tutorial Video</b>\n\n" +
		"Watch the video and follow the steps to get 24 hours access."

	tutorialNotSetText   = "❌ Sorry, the tutorial video has not been set by the admin yet."
	tutorialSendFailText = "❌ Sorry, the tutorial video could not be sent."

	unlockLinkFailText = "❌ An unknown error occurred while fetching the access link."
)

// deletionScheduler is the reaper surface the workflow needs.
type deletionScheduler interface {
	Schedule(t reaper.Target, delay time.Duration)
}

// DeliveryOptions are the static knobs of the workflow.
type DeliveryOptions struct {
	// RedirectPrefix marks a /start issued from the unlock-link redirect.
	RedirectPrefix string

	// DeleteDelay is how long a delivered video survives before removal.
	DeleteDelay time.Duration
}

type deliveryService struct {
	users     domainUser.IUserRepository
	access    domainAccess.IAccessUsecase
	resolver  domainResolver.IResolverUsecase
	settings  domainSettings.ISettingsRepository
	messenger domainMessenger.Messenger
	reaper    deletionScheduler
	opts      DeliveryOptions
}

func NewDeliveryService(
	users domainUser.IUserRepository,
	access domainAccess.IAccessUsecase,
	resolver domainResolver.IResolverUsecase,
	settings domainSettings.ISettingsRepository,
	messenger domainMessenger.Messenger,
	scheduler deletionScheduler,
	opts DeliveryOptions,
) domainDelivery.IDeliveryUsecase {
	return &deliveryService{
		users:     users,
		access:    access,
		resolver:  resolver,
		settings:  settings,
		messenger: messenger,
		reaper:    scheduler,
		opts:      opts,
	}
}

func (s *deliveryService) HandleStart(ctx context.Context, in domainDelivery.Inbound) error {
	if _, err := s.users.GetOrCreate(ctx, in.UserID, in.FirstName, in.Username); err != nil {
		return err
	}

	// A /start carrying the redirect marker means the user came back from a
	// completed unlock flow. The marker grants immediately; there is no
	// second confirmation step.
	if s.opts.RedirectPrefix != "" && strings.Contains(in.Text, s.opts.RedirectPrefix) {
		if err := s.access.Grant(ctx, in.UserID); err != nil {
			return err
		}
		_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID: in.ChatID,
			Text:   accessGrantedText,
		})
		return err
	}

	_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: in.ChatID,
		Text:   welcomeText,
	})
	return err
}

func (s *deliveryService) HandleText(ctx context.Context, in domainDelivery.Inbound) (domainDelivery.State, error) {
	text := strings.TrimSpace(in.Text)

	// Anything that is not an http(s) URL is ignored without a reply.
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return domainDelivery.StateIdle, nil
	}

	decision, err := s.access.Evaluate(ctx, in.UserID)
	if err != nil {
		return domainDelivery.StateFailed, err
	}

	if decision != domainAccess.DecisionGranted {
		_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID:   in.ChatID,
			Text:     insufficientBalanceText,
			Keyboard: accessKeyboard(),
		})
		if err != nil {
			return domainDelivery.StateFailed, err
		}
		return domainDelivery.StateFailed, nil
	}

	return s.deliver(ctx, in.ChatID, text)
}

// deliver runs the granted path: transient loading message, upstream resolve,
// video send, loading cleanup, deferred deletion.
func (s *deliveryService) deliver(ctx context.Context, chatID int64, link string) (domainDelivery.State, error) {
	loading, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
		ChatID: chatID,
		Text:   loadingText,
	})
	if err != nil {
		return domainDelivery.StateFailed, err
	}

	result, err := s.resolver.ResolveVideo(ctx, link)
	if err != nil {
		logrus.WithError(err).Warnf("[DELIVERY] Resolve failed for chat %d", chatID)
		editErr := s.messenger.EditText(ctx, chatID, loading.MessageID, resolveFailureText(err))
		if editErr != nil {
			logrus.WithError(editErr).Warnf("[DELIVERY] Failed to edit loading message in chat %d", chatID)
		}
		return domainDelivery.StateFailed, nil
	}

	title := result.Title
	if title == "" {
		title = "Terabox Video"
	}

	caption := fmt.Sprintf(
		"🎬 <b>%s</b>\n\n⚠️ <b>Forward the video to save it!</b> ⚠️\nIt will <b>automatically delete in %d seconds</b>.",
		html.EscapeString(title),
		int(s.opts.DeleteDelay.Seconds()),
	)

	sent, err := s.messenger.SendVideo(ctx, domainMessenger.VideoMessage{
		ChatID:   chatID,
		MediaURL: result.MediaURL,
		Caption:  caption,
		Keyboard: videoKeyboard(result.MediaURL),
	})
	if err != nil {
		logrus.WithError(err).Warnf("[DELIVERY] Video send failed for chat %d", chatID)
		editErr := s.messenger.EditText(ctx, chatID, loading.MessageID, resolveFailureText(err))
		if editErr != nil {
			logrus.WithError(editErr).Warnf("[DELIVERY] Failed to edit loading message in chat %d", chatID)
		}
		return domainDelivery.StateFailed, nil
	}

	if err := s.messenger.DeleteMessage(ctx, chatID, loading.MessageID); err != nil {
		logrus.WithError(err).Debugf("[DELIVERY] Failed to remove loading message in chat %d", chatID)
	}

	s.reaper.Schedule(reaper.Target{ChatID: sent.ChatID, MessageID: sent.MessageID}, s.opts.DeleteDelay)
	logrus.Infof("[DELIVERY] Video delivered to chat %d, removal in %s", chatID, s.opts.DeleteDelay)

	return domainDelivery.StatePendingExpiry, nil
}

func (s *deliveryService) HandleCallback(ctx context.Context, cb domainDelivery.Callback) error {
	switch cb.Data {
	case domainDelivery.CallbackGetAccess:
		return s.handleGetAccess(ctx, cb)
	case domainDelivery.CallbackShowTutorial:
		return s.handleShowTutorial(ctx, cb)
	default:
		// Unknown callback data is acknowledged and dropped.
		return s.messenger.AnswerCallback(ctx, cb.ID, "")
	}
}

func (s *deliveryService) handleGetAccess(ctx context.Context, cb domainDelivery.Callback) error {
	if err := s.messenger.AnswerCallback(ctx, cb.ID, "Generating access link..."); err != nil {
		logrus.WithError(err).Debug("[DELIVERY] Failed to answer callback")
	}

	link, err := s.resolver.FetchUnlockLink(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[DELIVERY] Unlock link fetch failed")
		return s.messenger.EditText(ctx, cb.ChatID, cb.MessageID, unlockLinkFailText)
	}

	linkMessage := fmt.Sprintf(
		"🔗 <b>24 Hour Access Link</b>\n\n"+
			"To confirm your access, <b>click the link below</b>. Complete the steps on the link, "+
			"and then <b>return to the bot and use the /start command again</b>.\n\n"+
			"➡️ <a href=\"%s\">Access Link</a>",
		link,
	)

	return s.messenger.EditText(ctx, cb.ChatID, cb.MessageID, linkMessage)
}

func (s *deliveryService) handleShowTutorial(ctx context.Context, cb domainDelivery.Callback) error {
	if err := s.messenger.AnswerCallback(ctx, cb.ID, "Sending tutorial video..."); err != nil {
		logrus.WithError(err).Debug("[DELIVERY] Failed to answer callback")
	}

	fileID, err := s.settings.Get(ctx, domainSettings.KeyTutorialVideo)
	if err != nil {
		return err
	}

	if fileID == "" {
		_, err := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID: cb.ChatID,
			Text:   tutorialNotSetText,
		})
		return err
	}

	_, err = s.messenger.SendVideo(ctx, domainMessenger.VideoMessage{
		ChatID:  cb.ChatID,
		FileID:  fileID,
		Caption: tutorialCaption,
	})
	if err != nil {
		logrus.WithError(err).Warn("[DELIVERY] Tutorial video send failed")
		_, sendErr := s.messenger.SendText(ctx, domainMessenger.TextMessage{
			ChatID: cb.ChatID,
			Text:   tutorialSendFailText,
		})
		return sendErr
	}
	return nil
}

// resolveFailureText maps an upstream failure to the user-facing diagnostic.
// Processing failures carry the upstream message; everything else collapses
// into a generic connectivity line.
func resolveFailureText(err error) string {
	var procErr pkgError.UpstreamProcessingError
	if errors.As(err, &procErr) {
		return "❌ Sorry! Could not process the video. " + capitalize(procErr.Error())
	}
	return "❌ An error occurred: Network or API connection issue occurred."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func accessKeyboard() [][]domainMessenger.Button {
	return [][]domainMessenger.Button{{
		{Text: "🔐 Get 24 Hours Access", CallbackData: domainDelivery.CallbackGetAccess},
		{Text: "▶️ Access Tutorial Video", CallbackData: domainDelivery.CallbackShowTutorial},
	}}
}

func videoKeyboard(mediaURL string) [][]domainMessenger.Button {
	return [][]domainMessenger.Button{{
		{Text: "Download ⬇️", URL: mediaURL},
	}}
}
