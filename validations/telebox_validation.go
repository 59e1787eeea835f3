package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	coreConfig "github.com/AzielCF/az-telebox/core/config"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

// Telegram caps message text at 4096 characters.
const maxMessageLength = 4096

func ValidateBroadcastText(ctx context.Context, text string) error {
	err := validation.Validate(text,
		validation.Required,
		validation.Length(1, maxMessageLength),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateTutorialVideo(ctx context.Context, fileID string) error {
	err := validation.Validate(fileID, validation.Required)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

// ValidateUpstreamConfig rejects a startup configuration that would make
// every delivery fail at the first upstream call.
func ValidateUpstreamConfig(ctx context.Context, cfg coreConfig.UpstreamConfig) error {
	err := validation.ValidateStructWithContext(ctx, &cfg,
		validation.Field(&cfg.UnlockLinkAPI, validation.Required, is.URL),
		validation.Field(&cfg.VideoAPIBase, validation.Required, is.URL),
		validation.Field(&cfg.RedirectPrefix, validation.Required, is.URL),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
