package repository

import (
	"context"

	"github.com/AzielCF/az-telebox/infrastructure/valkey"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

// ValkeySettingsStore implements settings.ISettingsRepository on Valkey.
// Entries live under "<prefix>setting:<key>".
type ValkeySettingsStore struct {
	client *valkey.Client
}

func NewValkeySettingsStore(client *valkey.Client) *ValkeySettingsStore {
	return &ValkeySettingsStore{client: client}
}

func (r *ValkeySettingsStore) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx); err != nil {
		return pkgError.StorageError("valkey unreachable", err)
	}
	return nil
}

func (r *ValkeySettingsStore) Get(ctx context.Context, key string) (string, error) {
	inner := r.client.Inner()
	value, err := inner.Do(ctx, inner.B().Get().Key(r.client.Key("setting", key)).Build()).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", nil
		}
		return "", pkgError.StorageError("failed to load setting", err)
	}
	return value, nil
}

func (r *ValkeySettingsStore) Set(ctx context.Context, key, value string) error {
	inner := r.client.Inner()
	if err := inner.Do(ctx, inner.B().Set().Key(r.client.Key("setting", key)).Value(value).Build()).Error(); err != nil {
		return pkgError.StorageError("failed to save setting", err)
	}
	return nil
}
