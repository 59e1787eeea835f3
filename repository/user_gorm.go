package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AzielCF/az-telebox/domains/user"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
	"gorm.io/gorm"
)

// userModel is the persistence model for GORM. Keeps the domain struct free
// of GORM tags.
type userModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false"`
	FirstName     string    `gorm:"column:first_name"`
	Username      string    `gorm:"column:username"`
	AccessExpires time.Time `gorm:"column:access_expires;not null"`
	JoinDate      time.Time `gorm:"column:join_date;not null"`
	TotalGrants   int       `gorm:"column:total_grants;not null;default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (userModel) TableName() string {
	return "users"
}

func toUserModel(rec user.UserRecord) userModel {
	return userModel{
		ID:            rec.ID,
		FirstName:     rec.FirstName,
		Username:      rec.Username,
		AccessExpires: rec.AccessExpires,
		JoinDate:      rec.JoinDate,
		TotalGrants:   rec.TotalGrants,
	}
}

func fromUserModel(m userModel) user.UserRecord {
	return user.UserRecord{
		ID:            m.ID,
		FirstName:     m.FirstName,
		Username:      m.Username,
		AccessExpires: m.AccessExpires,
		JoinDate:      m.JoinDate,
		TotalGrants:   m.TotalGrants,
	}
}

// GormUserStore implements user.IUserRepository on GORM (sqlite or postgres).
type GormUserStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Init initializes the schema using AutoMigrate.
func (r *GormUserStore) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&userModel{}); err != nil {
		return pkgError.StorageError("failed to migrate users table", err)
	}
	return nil
}

func (r *GormUserStore) GetOrCreate(ctx context.Context, id int64, firstName, username string) (user.UserRecord, error) {
	var model userModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err == nil {
		return fromUserModel(model), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user.UserRecord{}, pkgError.StorageError("failed to load user", err)
	}

	rec := user.UserRecord{
		ID:            id,
		FirstName:     firstName,
		Username:      username,
		AccessExpires: time.Unix(0, 0).UTC(),
		JoinDate:      r.now(),
	}
	model = toUserModel(rec)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return user.UserRecord{}, pkgError.StorageError("failed to create user", err)
	}
	return rec, nil
}

func (r *GormUserStore) GrantAccess(ctx context.Context, id int64) error {
	var model userModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = toUserModel(user.UserRecord{ID: id, JoinDate: r.now()})
	} else if err != nil {
		return pkgError.StorageError("failed to load user for grant", err)
	}

	model.AccessExpires = r.now().Add(user.AccessWindow)
	model.TotalGrants++

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return pkgError.StorageError("failed to persist grant", err)
	}
	return nil
}

func (r *GormUserStore) HasAccess(ctx context.Context, id int64) (bool, error) {
	var model userModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pkgError.StorageError("failed to load user", err)
	}
	return model.AccessExpires.After(r.now()), nil
}

func (r *GormUserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&count).Error; err != nil {
		return 0, pkgError.StorageError("failed to count users", err)
	}
	return count, nil
}

func (r *GormUserStore) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, pkgError.StorageError("failed to list users", err)
	}
	return ids, nil
}
