package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/password"
)

// Admin management errors
var (
	ErrAdminAlreadyExists = errors.New("username or email already exists")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidRole        = errors.New("invalid role")
)

// AdminService manages administrator accounts and their driver tenancy
type AdminService struct {
	adminRepo  repositories.AdminRepository
	driverRepo repositories.DriverRepository
}

// NewAdminService creates a new admin service
func NewAdminService(adminRepo repositories.AdminRepository, driverRepo repositories.DriverRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo, driverRepo: driverRepo}
}

// CreateAdminInput represents create admin input
type CreateAdminInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ListAdminsOutput represents list admins output
type ListAdminsOutput struct {
	Admins     []*models.AdminResponse `json:"admins"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

// CreateAdmin creates an admin account
func (s *AdminService) CreateAdmin(ctx context.Context, input *CreateAdminInput) (*models.AdminResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Role == "" {
		input.Role = domain.RoleAdmin
	}
	if !domain.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if !password.Valid(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.adminRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     input.Role,
		IsActive: true,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	log.Printf("✅ Admin created: %s (%s)", admin.Username, admin.Role)
	return admin.ToResponse(), nil
}

// ListAdmins lists admins with pagination
func (s *AdminService) ListAdmins(ctx context.Context, page, limit int) (*ListAdminsOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	admins, total, err := s.adminRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*models.AdminResponse, len(admins))
	for i, admin := range admins {
		out[i] = admin.ToResponse()
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListAdminsOutput{
		Admins:     out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// AssignDriver adds a driver to an admin's tenancy
func (s *AdminService) AssignDriver(ctx context.Context, adminID uint, driverID string) error {
	if _, err := s.adminRepo.GetByID(ctx, adminID); err != nil {
		return ErrAdminNotFound
	}

	everyone := domain.Subject{Role: domain.RoleSuperAdmin}
	driver, err := s.driverRepo.GetByDriverID(ctx, everyone, driverID)
	if err != nil {
		return fmt.Errorf("find driver: %w", err)
	}
	if driver == nil {
		return domain.ErrDriverNotFound
	}

	return s.adminRepo.LinkDriver(ctx, adminID, driver.ID)
}
