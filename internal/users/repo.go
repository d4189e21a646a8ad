package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository stores account rows. Emails are kept lower-cased so the unique
// index on users.email is case-insensitive in practice.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create persists a new account. Duplicate emails surface as the driver's
// unique violation.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	dto.Email = NormalizeEmail(dto.Email)
	dto.Name = strings.TrimSpace(dto.Name)
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail returns gorm.ErrRecordNotFound when no account uses email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Take(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
