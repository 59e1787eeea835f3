package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/AzielCF/az-telebox/domains/user"
	"github.com/AzielCF/az-telebox/infrastructure/valkey"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

// ValkeyUserStore implements user.IUserRepository on Valkey. Records are
// stored as JSON under "<prefix>user:<id>", mirroring the original
// deployment's KV layout. Listing uses SCAN, never KEYS.
type ValkeyUserStore struct {
	client *valkey.Client
	now    func() time.Time
}

func NewValkeyUserStore(client *valkey.Client) *ValkeyUserStore {
	return &ValkeyUserStore{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *ValkeyUserStore) key(id int64) string {
	return r.client.Key("user", strconv.FormatInt(id, 10))
}

func (r *ValkeyUserStore) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx); err != nil {
		return pkgError.StorageError("valkey unreachable", err)
	}
	return nil
}

func (r *ValkeyUserStore) load(ctx context.Context, id int64) (user.UserRecord, bool, error) {
	inner := r.client.Inner()
	data, err := inner.Do(ctx, inner.B().Get().Key(r.key(id)).Build()).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return user.UserRecord{}, false, nil
		}
		return user.UserRecord{}, false, pkgError.StorageError("failed to load user", err)
	}

	var rec user.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return user.UserRecord{}, false, pkgError.StorageError("corrupt user record", err)
	}
	return rec, true, nil
}

func (r *ValkeyUserStore) save(ctx context.Context, rec user.UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return pkgError.StorageError("failed to marshal user record", err)
	}

	inner := r.client.Inner()
	if err := inner.Do(ctx, inner.B().Set().Key(r.key(rec.ID)).Value(string(data)).Build()).Error(); err != nil {
		return pkgError.StorageError("failed to save user record", err)
	}
	return nil
}

func (r *ValkeyUserStore) GetOrCreate(ctx context.Context, id int64, firstName, username string) (user.UserRecord, error) {
	rec, found, err := r.load(ctx, id)
	if err != nil {
		return user.UserRecord{}, err
	}
	if found {
		return rec, nil
	}

	rec = user.UserRecord{
		ID:            id,
		FirstName:     firstName,
		Username:      username,
		AccessExpires: time.Unix(0, 0).UTC(),
		JoinDate:      r.now(),
	}
	if err := r.save(ctx, rec); err != nil {
		return user.UserRecord{}, err
	}
	return rec, nil
}

func (r *ValkeyUserStore) GrantAccess(ctx context.Context, id int64) error {
	rec, found, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		rec = user.UserRecord{ID: id, JoinDate: r.now()}
	}

	rec.AccessExpires = r.now().Add(user.AccessWindow)
	rec.TotalGrants++
	return r.save(ctx, rec)
}

func (r *ValkeyUserStore) HasAccess(ctx context.Context, id int64) (bool, error) {
	rec, found, err := r.load(ctx, id)
	if err != nil || !found {
		return false, err
	}
	return rec.HasAccessAt(r.now()), nil
}

func (r *ValkeyUserStore) Count(ctx context.Context) (int64, error) {
	ids, err := r.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *ValkeyUserStore) ListIDs(ctx context.Context) ([]int64, error) {
	inner := r.client.Inner()
	pattern := r.client.Key("user", "*")
	prefix := r.client.Key("user") + ":"

	var ids []int64
	var cursor uint64

	for {
		result, err := inner.Do(ctx, inner.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()).AsScanEntry()
		if err != nil {
			return nil, pkgError.StorageError("failed to scan users", err)
		}

		for _, k := range result.Elements {
			if len(k) <= len(prefix) {
				continue
			}
			if id, err := strconv.ParseInt(k[len(prefix):], 10, 64); err == nil {
				ids = append(ids, id)
			}
		}

		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}

	return ids, nil
}
