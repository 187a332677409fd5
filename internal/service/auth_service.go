package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"startup_market/internal/fixtures"
	"startup_market/internal/model"
	"startup_market/internal/repository"
	"startup_market/internal/utils"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDemoDisabled       = errors.New("demo login is disabled")
	ErrWrongPassword      = fmt.Errorf("%w: current password is incorrect", ErrValidation)
	ErrSamePassword       = fmt.Errorf("%w: new password must differ from the current one", ErrValidation)
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error)
	DemoLogin(ctx context.Context, role string) (*model.User, string, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Profile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch model.UserPatch) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error
}

// AuthOptions carries the deployment switches the auth flow depends on
type AuthOptions struct {
	InitialAdminEmail string
	DemoMode          bool
}

type authService struct {
	userRepo    repository.UserRepository
	revocations repository.RevocationStore
	jwtUtil     *utils.JWTUtil
	opts        AuthOptions
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, revocations repository.RevocationStore, jwtUtil *utils.JWTUtil, opts AuthOptions) AuthService {
	return &authService{
		userRepo:    userRepo,
		revocations: revocations,
		jwtUtil:     jwtUtil,
		opts:        opts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if s.opts.InitialAdminEmail != "" && req.Email == normalizeEmail(s.opts.InitialAdminEmail) {
		role = model.RoleAdmin
		log.Printf("INFO: User %s is being registered as ADMIN via INITIAL_ADMIN_EMAIL.", req.Email)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		PasswordHash: hashedPassword,
		Role:         role,
		KYCStatus:    model.KYCPending,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		log.Printf("ERROR: User %s (ID: %d) created, but failed to generate token: %v", user.Email, user.ID, err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// DemoLogin signs in as the canned buyer or seller, creating the account on
// first use.
func (s *authService) DemoLogin(ctx context.Context, role string) (*model.User, string, error) {
	if !s.opts.DemoMode {
		return nil, "", ErrDemoDisabled
	}
	demo, ok := fixtures.DemoUser(role)
	if !ok {
		return nil, "", validationError("demo role must be %s or %s", model.RoleBuyer, model.RoleSeller)
	}

	user, err := s.userRepo.FindByEmail(ctx, demo.Email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding demo user: %w", err)
	}
	if user == nil {
		hashedPassword, err := utils.HashPassword(fixtures.DemoPassword)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash password: %w", err)
		}
		demo.PasswordHash = hashedPassword
		demo.CreatedAt = time.Now()
		if err := s.userRepo.Create(ctx, &demo); err != nil {
			return nil, "", fmt.Errorf("failed to create demo user: %w", err)
		}
		log.Printf("INFO: Created demo %s account %s (ID: %d)", demo.Role, demo.Email, demo.ID)
		user = &demo
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Logout revokes the token until it would have expired anyway
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile shallow-merges patch into the stored profile. KYC status is
// not user-editable and is ignored here.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, patch model.UserPatch) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch.KYCStatus = nil
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
		if email != user.Email {
			other, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check existing user: %w", err)
			}
			if other != nil {
				return nil, ErrUserAlreadyExists
			}
		}
	}
	if patch.Name != nil && len(strings.TrimSpace(*patch.Name)) < 3 {
		return nil, validationError("name must be at least 3 characters")
	}
	if patch.Phone != nil && *patch.Phone != "" && !isTenDigits(*patch.Phone) {
		return nil, validationError("phone must be a 10 digit number")
	}

	patch.Apply(user)
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one. A
// wrong current password is a validation error, not an auth failure.
func (s *authService) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}
	if req.NewPassword == req.CurrentPassword {
		return ErrSamePassword
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
