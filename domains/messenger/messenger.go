package messenger

import "context"

// Button is a single inline keyboard button. Exactly one of URL or
// CallbackData should be set.
type Button struct {
	Text         string
	URL          string
	CallbackData string
}

// TextMessage is a request to send a text message.
type TextMessage struct {
	ChatID         int64
	Text           string
	Keyboard       [][]Button
	DisablePreview bool
}

// VideoMessage is a request to send a video, either by direct URL or by a
// previously-uploaded Telegram file ID.
type VideoMessage struct {
	ChatID   int64
	MediaURL string
	FileID   string
	Caption  string
	Keyboard [][]Button
}

// Sent identifies a delivered message for later edits or deletion.
type Sent struct {
	ChatID    int64
	MessageID int
}

// Messenger abstracts the outbound messaging platform calls. The workflows
// depend on this interface only; the Telegram adapter lives in
// infrastructure/telegram.
type Messenger interface {
	SendText(ctx context.Context, msg TextMessage) (Sent, error)
	SendVideo(ctx context.Context, msg VideoMessage) (Sent, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
