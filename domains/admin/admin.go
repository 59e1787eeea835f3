package admin

import (
	"context"
	"time"
)

// PendingActionTTL bounds how long a /setvideo prompt stays armed.
const PendingActionTTL = 5 * time.Minute

// BroadcastResult reports per-recipient outcomes of one broadcast run.
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// IAdminUsecase is the admin console. Every operation verifies the caller
// against the statically configured allow-list; unauthorized callers get a
// uniform denial and no further effect.
type IAdminUsecase interface {
	IsAdmin(id int64) bool

	SetTutorialVideo(ctx context.Context, adminID int64, fileID string) error
	GetTutorialVideo(ctx context.Context) (string, error)
	UserCount(ctx context.Context) (int64, error)

	// Broadcast sends text to every known identity with a small fixed
	// pause between sends. A crash mid-run loses progress by design.
	Broadcast(ctx context.Context, adminID int64, text string) (BroadcastResult, error)

	// BeginVideoSetup arms a short-lived pending-action so the next video
	// from this admin becomes the tutorial video.
	BeginVideoSetup(ctx context.Context, adminID int64) error

	// ConsumePendingVideo reports whether a live pending-action existed
	// for the admin and clears it.
	ConsumePendingVideo(ctx context.Context, adminID int64) bool

	// Telegram-facing command handlers; these compose the chat replies.
	HandleSetVideoCommand(ctx context.Context, adminID, chatID int64) error
	HandleVideoMessage(ctx context.Context, senderID, chatID int64, fileID string) error
	HandleUserCountCommand(ctx context.Context, adminID, chatID int64) error
	HandleBroadcastCommand(ctx context.Context, adminID, chatID int64, text string) error
}
