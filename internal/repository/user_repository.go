package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
)

// UserRepository reads the user table owned by the user service. The
// dispatcher uses it to re-derive a target user's tenant before any
// notification is written.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID fetches one user by id
func (r *userRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var user domain.User
	err = db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
