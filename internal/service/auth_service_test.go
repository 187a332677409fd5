package service

import (
	"context"
	"testing"
	"time"

	"startup_market/internal/fixtures"
	"startup_market/internal/model"
	"startup_market/internal/repository"
	"startup_market/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(opts AuthOptions) (AuthService, *fakeUserRepo, repository.RevocationStore, *utils.JWTUtil) {
	users := newFakeUserRepo()
	revocations := repository.NewMemoryRevocationStore()
	jwtUtil := utils.NewJWTUtil("test-secret", 1)
	return NewAuthService(users, revocations, jwtUtil, opts), users, revocations, jwtUtil
}

func buyerRegistration() model.RegisterRequest {
	return model.RegisterRequest{Name: "Arjun Mehta", Email: " Arjun@Example.com ", Password: "secret1", Role: model.RoleBuyer}
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _, jwtUtil := newTestAuthService(AuthOptions{})
	ctx := context.Background()

	user, token, err := svc.Register(ctx, buyerRegistration())
	require.NoError(t, err)
	assert.Equal(t, "arjun@example.com", user.Email)
	assert.Equal(t, model.RoleBuyer, user.Role)
	assert.Equal(t, model.KYCPending, user.KYCStatus)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	claims, err := jwtUtil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = svc.Register(ctx, buyerRegistration())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

// racingUserRepo misses the email lookup, as if a concurrent registration
// inserted the row in between.
type racingUserRepo struct {
	*fakeUserRepo
}

func (r racingUserRepo) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(racingUserRepo{users}, repository.NewMemoryRevocationStore(), utils.NewJWTUtil("test-secret", 1), AuthOptions{})
	_, _, err := svc.Register(context.Background(), buyerRegistration())
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), buyerRegistration())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuthService(AuthOptions{})

	req := buyerRegistration()
	req.Password = "123"
	_, _, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_Register_InitialAdmin(t *testing.T) {
	svc, _, _, _ := newTestAuthService(AuthOptions{InitialAdminEmail: "arjun@example.com"})

	user, _, err := svc.Register(context.Background(), buyerRegistration())
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _, _ := newTestAuthService(AuthOptions{})
	ctx := context.Background()
	_, _, err := svc.Register(ctx, buyerRegistration())
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, model.LoginRequest{Email: "ARJUN@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Arjun Mehta", user.Name)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, model.LoginRequest{Email: "arjun@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_DemoLogin(t *testing.T) {
	svc, users, _, _ := newTestAuthService(AuthOptions{})
	_, _, err := svc.DemoLogin(context.Background(), model.RoleBuyer)
	assert.ErrorIs(t, err, ErrDemoDisabled)

	svc, users, _, _ = newTestAuthService(AuthOptions{DemoMode: true})
	ctx := context.Background()

	first, token, err := svc.DemoLogin(ctx, model.RoleSeller)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "seller@demo.com", first.Email)
	assert.Equal(t, model.KYCApproved, first.KYCStatus)

	second, _, err := svc.DemoLogin(ctx, model.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, users.users, 1)

	// The demo account also accepts a normal login.
	_, _, err = svc.Login(ctx, model.LoginRequest{Email: "seller@demo.com", Password: fixtures.DemoPassword})
	assert.NoError(t, err)

	_, _, err = svc.DemoLogin(ctx, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, revocations, jwtUtil := newTestAuthService(AuthOptions{})
	ctx := context.Background()

	token, err := jwtUtil.GenerateToken(1, model.RoleBuyer)
	require.NoError(t, err)
	claims, err := jwtUtil.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID, claims.ExpiresAt.Time))
	revoked, err := revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.NoError(t, svc.Logout(ctx, "", time.Now().Add(time.Hour)))
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _, _, _ := newTestAuthService(AuthOptions{})
	ctx := context.Background()
	user, _, err := svc.Register(ctx, buyerRegistration())
	require.NoError(t, err)
	other := buyerRegistration()
	other.Email = "taken@example.com"
	_, _, err = svc.Register(ctx, other)
	require.NoError(t, err)

	bio := "Angel investor"
	kyc := model.KYCApproved
	updated, err := svc.UpdateProfile(ctx, user.ID, model.UserPatch{Bio: &bio, KYCStatus: &kyc})
	require.NoError(t, err)
	assert.Equal(t, "Angel investor", updated.Bio)
	assert.Equal(t, "Arjun Mehta", updated.Name)
	assert.Equal(t, model.KYCPending, updated.KYCStatus)

	taken := "taken@example.com"
	_, err = svc.UpdateProfile(ctx, user.ID, model.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	phone := "12ab"
	_, err = svc.UpdateProfile(ctx, user.ID, model.UserPatch{Phone: &phone})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile(ctx, 999, model.UserPatch{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, users, _, _ := newTestAuthService(AuthOptions{})
	ctx := context.Background()
	user, _, err := svc.Register(ctx, buyerRegistration())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, model.ChangePasswordRequest{CurrentPassword: "wrong-one", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, model.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ChangePassword(ctx, user.ID, model.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret1"})
	assert.ErrorIs(t, err, ErrSamePassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, model.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))
	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("secret2", stored.PasswordHash))

	_, _, err = svc.Login(ctx, model.LoginRequest{Email: "arjun@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, model.LoginRequest{Email: "arjun@example.com", Password: "secret2"})
	assert.NoError(t, err)

	err = svc.ChangePassword(ctx, 999, model.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
