package settings

import "context"

// Fixed settings keys. Values are opaque strings, overwritten in place.
const (
	KeyTutorialVideo = "config_tutorial_video_id"
)

// ISettingsRepository is a flat key/value store for the small set of
// admin-managed configuration entries.
type ISettingsRepository interface {
	Init(ctx context.Context) error

	// Get returns the stored value, or "" when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error
}
