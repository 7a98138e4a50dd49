package services

import (
	"context"
	"errors"
	"log"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/config"
	"rfid-attendance/internal/pkg/jwt"
	"rfid-attendance/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAdminInactive      = errors.New("admin account is inactive")
)

// AuthService handles administrator sessions
type AuthService struct {
	adminRepo        repositories.AdminRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	adminRepo repositories.AdminRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		adminRepo:        adminRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Admin        *models.AdminResponse `json:"admin"`
	AccessToken  string                `json:"access_token"`
	RefreshToken string                `json:"refresh_token"`
}

// Login authenticates an admin
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	if !password.Verify(input.Password, admin.Password) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, admin)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Admin logged in: %s", admin.Username)
	return resp, nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, ErrAdminNotFound
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	// rotation: the presented token is single use
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	return s.issue(ctx, admin)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes all refresh tokens of an admin
func (s *AuthService) LogoutAll(ctx context.Context, adminID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByAdminID(ctx, adminID); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked for admin ID: %d", adminID)
	return nil
}

// GetAdminByID gets an admin by ID
func (s *AuthService) GetAdminByID(ctx context.Context, adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) issue(ctx context.Context, admin *models.Admin) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(
		admin.ID,
		admin.Username,
		admin.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		admin.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	err = s.refreshTokenRepo.Create(ctx, &models.RefreshToken{
		AdminID:   admin.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Admin:        admin.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
