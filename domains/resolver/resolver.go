package resolver

import "context"

// VideoResult is the successful payload from the video-resolution API.
type VideoResult struct {
	MediaURL  string `json:"media_url"`
	Title     string `json:"title,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// IResolverUsecase talks to the two upstream APIs. Both calls are single
// attempt, fail fast, no retries.
type IResolverUsecase interface {
	// FetchUnlockLink returns the external unlock URL. The returned string
	// is trimmed and verified against the configured redirect prefix.
	FetchUnlockLink(ctx context.Context) (string, error)

	// ResolveVideo exchanges a user-supplied share link for a direct media
	// URL and optional metadata.
	ResolveVideo(ctx context.Context, link string) (VideoResult, error)
}
