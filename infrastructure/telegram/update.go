package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	domainDelivery "github.com/AzielCF/az-telebox/domains/delivery"
)

// ToInbound normalizes a raw Telegram update into the workflow shape.
// Updates with no usable payload (channel posts, edits, joins) yield false.
func ToInbound(update tgbotapi.Update) (domainDelivery.Inbound, bool) {
	if cb := update.CallbackQuery; cb != nil && cb.Message != nil {
		return domainDelivery.Inbound{
			ChatID:    cb.Message.Chat.ID,
			UserID:    cb.From.ID,
			FirstName: cb.From.FirstName,
			Username:  cb.From.UserName,
			Callback: &domainDelivery.Callback{
				ID:        cb.ID,
				ChatID:    cb.Message.Chat.ID,
				UserID:    cb.From.ID,
				MessageID: cb.Message.MessageID,
				Data:      cb.Data,
			},
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return domainDelivery.Inbound{}, false
	}

	in := domainDelivery.Inbound{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		Username:  msg.From.UserName,
		Text:      msg.Text,
	}
	if msg.Video != nil {
		in.VideoFileID = msg.Video.FileID
	}

	if in.Text == "" && in.VideoFileID == "" {
		return domainDelivery.Inbound{}, false
	}
	return in, true
}
