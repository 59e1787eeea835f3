package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	domainAdmin "github.com/AzielCF/az-telebox/domains/admin"
	domainDelivery "github.com/AzielCF/az-telebox/domains/delivery"
)

// Dispatcher routes one normalized update to the right workflow. It is the
// single entry point the webhook worker pool calls into.
type Dispatcher struct {
	delivery domainDelivery.IDeliveryUsecase
	admin    domainAdmin.IAdminUsecase
}

func NewDispatcher(delivery domainDelivery.IDeliveryUsecase, admin domainAdmin.IAdminUsecase) *Dispatcher {
	return &Dispatcher{
		delivery: delivery,
		admin:    admin,
	}
}

// Dispatch never panics its way back to the webhook; the caller already
// answered Telegram with 200 by the time this runs.
func (d *Dispatcher) Dispatch(ctx context.Context, in domainDelivery.Inbound) error {
	if in.Callback != nil {
		return d.delivery.HandleCallback(ctx, *in.Callback)
	}

	if in.VideoFileID != "" {
		return d.admin.HandleVideoMessage(ctx, in.UserID, in.ChatID, in.VideoFileID)
	}

	command, args := splitCommand(in.Text)
	switch command {
	case "/start":
		return d.delivery.HandleStart(ctx, in)
	case "/setvideo":
		return d.admin.HandleSetVideoCommand(ctx, in.UserID, in.ChatID)
	case "/usercount":
		return d.admin.HandleUserCountCommand(ctx, in.UserID, in.ChatID)
	case "/broadcast":
		return d.admin.HandleBroadcastCommand(ctx, in.UserID, in.ChatID, args)
	default:
		state, err := d.delivery.HandleText(ctx, in)
		if err != nil {
			return err
		}
		if state != domainDelivery.StateIdle {
			logrus.Debugf("[DISPATCH] Text from chat %d finished in state %s", in.ChatID, state)
		}
		return nil
	}
}

// splitCommand separates "/broadcast hello there" into the command and its
// trailing arguments. Commands may carry a @botname suffix in groups.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command := text
	args := ""
	if idx := strings.IndexByte(text, ' '); idx >= 0 {
		command = text[:idx]
		args = strings.TrimSpace(text[idx+1:])
	}

	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	return command, args
}
