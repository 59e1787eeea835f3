package delivery

import "context"

// State tracks the delivery workflow for a single inbound link.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingUpstream State = "awaiting_upstream"
	StateDelivered        State = "delivered"
	StatePendingExpiry    State = "pending_expiry"
	StateRemoved          State = "removed"
	StateFailed           State = "failed"
)

// Callback data emitted on the inline keyboards.
const (
	CallbackGetAccess    = "get_access"
	CallbackShowTutorial = "show_tutorial"
)

// Callback is a button click forwarded from the webhook.
type Callback struct {
	ID        string
	ChatID    int64
	UserID    int64
	MessageID int
	Data      string
}

// Inbound is one normalized chat update. Exactly one of Callback,
// VideoFileID or Text carries the payload.
type Inbound struct {
	ChatID      int64
	UserID      int64
	FirstName   string
	Username    string
	Text        string
	VideoFileID string
	Callback    *Callback
}

// IDeliveryUsecase runs the link-delivery workflow:
// validate input, check access, resolve video, send, schedule deletion.
type IDeliveryUsecase interface {
	// HandleStart processes /start, granting access when the command text
	// carries the configured redirect marker.
	HandleStart(ctx context.Context, in Inbound) error

	// HandleText processes free text. Non-link text is silently ignored
	// and reported as StateIdle.
	HandleText(ctx context.Context, in Inbound) (State, error)

	// HandleCallback processes the access and tutorial buttons.
	HandleCallback(ctx context.Context, cb Callback) error
}
