package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
)

// PreferenceRepository persists per-user notification preferences.
// Preferences are sparse: Get returns gorm.ErrRecordNotFound for users
// who never wrote a row, and callers treat absence as all-notify.
type PreferenceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
	GetOrDefaults(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
	Upsert(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.NotificationPreference, error)
}

type preferenceRepositoryImpl struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new instance of PreferenceRepository
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepositoryImpl{db: db}
}

// Get fetches the user's preference row, gorm.ErrRecordNotFound when
// none exists.
func (r *preferenceRepositoryImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var pref domain.NotificationPreference
	err = db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// GetOrDefaults returns the stored row or the lazily materialized
// all-notify defaults without writing them. Defaults get an id only
// when the user first saves a change.
func (r *preferenceRepositoryImpl) GetOrDefaults(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	pref, err := r.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DefaultPreferences(userID), nil
		}
		return nil, err
	}
	return pref, nil
}

// Upsert applies a partial update, creating the row from defaults on
// first write.
func (r *preferenceRepositoryImpl) Upsert(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.NotificationPreference, error) {
	pref, err := r.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		pref = domain.DefaultPreferences(userID)
		pref.ID = uuid.New()
		pref.CreatedAt = time.Now()
	}

	update.Apply(pref)
	pref.UpdatedAt = time.Now()

	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Save(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}
