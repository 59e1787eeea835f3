package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	domainMessenger "github.com/AzielCF/az-telebox/domains/messenger"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

// Adapter implements the Messenger interface on the Telegram Bot API.
// All outbound text uses HTML parse mode.
type Adapter struct {
	bot *tgbotapi.BotAPI
}

func NewAdapter(token string, debug bool) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, pkgError.UpstreamNetworkError("failed to initialize bot API", err)
	}
	bot.Debug = debug

	logrus.Infof("[TELEGRAM] Authorized as @%s", bot.Self.UserName)
	return &Adapter{bot: bot}, nil
}

// NewAdapterWithBot wraps an existing client, used by tests.
func NewAdapterWithBot(bot *tgbotapi.BotAPI) *Adapter {
	return &Adapter{bot: bot}
}

func (a *Adapter) SendText(ctx context.Context, msg domainMessenger.TextMessage) (domainMessenger.Sent, error) {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = msg.DisablePreview
	if kb, ok := toInlineKeyboard(msg.Keyboard); ok {
		out.ReplyMarkup = kb
	}

	sent, err := a.bot.Send(out)
	if err != nil {
		return domainMessenger.Sent{}, pkgError.UpstreamNetworkError("failed to send message", err)
	}
	return domainMessenger.Sent{ChatID: msg.ChatID, MessageID: sent.MessageID}, nil
}

func (a *Adapter) SendVideo(ctx context.Context, msg domainMessenger.VideoMessage) (domainMessenger.Sent, error) {
	var file tgbotapi.RequestFileData
	if msg.FileID != "" {
		file = tgbotapi.FileID(msg.FileID)
	} else {
		file = tgbotapi.FileURL(msg.MediaURL)
	}

	out := tgbotapi.NewVideo(msg.ChatID, file)
	out.Caption = msg.Caption
	out.ParseMode = tgbotapi.ModeHTML
	if kb, ok := toInlineKeyboard(msg.Keyboard); ok {
		out.ReplyMarkup = kb
	}

	sent, err := a.bot.Send(out)
	if err != nil {
		return domainMessenger.Sent{}, pkgError.UpstreamNetworkError("failed to send video", err)
	}
	return domainMessenger.Sent{ChatID: msg.ChatID, MessageID: sent.MessageID}, nil
}

func (a *Adapter) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	if _, err := a.bot.Send(edit); err != nil {
		return pkgError.UpstreamNetworkError("failed to edit message", err)
	}
	return nil
}

func (a *Adapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := a.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return pkgError.UpstreamNetworkError("failed to delete message", err)
	}
	return nil
}

func (a *Adapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if _, err := a.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return pkgError.UpstreamNetworkError("failed to answer callback", err)
	}
	return nil
}

func toInlineKeyboard(rows [][]domainMessenger.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	var kbRows [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var kbRow []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.URL != "" {
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
			}
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}
