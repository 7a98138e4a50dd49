package repositories

import (
	"context"
	"time"

	"rfid-attendance/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// refreshTokenRepository implements RefreshTokenRepository interface
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create creates a new refresh token
func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenHash gets an unrevoked refresh token by its hash
func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Where("revoked_at IS NULL").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke revokes a refresh token by ID
func (r *refreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	return r.revoke(ctx, r.db.Where("id = ?", id))
}

// RevokeByTokenHash revokes a refresh token by its hash
func (r *refreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return r.revoke(ctx, r.db.Where("token_hash = ?", tokenHash))
}

// RevokeAllByAdminID revokes every live session of an admin
func (r *refreshTokenRepository) RevokeAllByAdminID(ctx context.Context, adminID uint) error {
	return r.revoke(ctx, r.db.Where("admin_id = ?", adminID).Where("revoked_at IS NULL"))
}

func (r *refreshTokenRepository) revoke(ctx context.Context, q *gorm.DB) error {
	now := time.Now()
	return q.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Update("revoked_at", &now).Error
}

// DeleteExpired deletes expired tokens and returns how many were removed
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
