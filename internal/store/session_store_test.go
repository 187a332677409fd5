package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"startup_market/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoBuyer() model.User {
	return model.User{
		ID:        1,
		Name:      "Arjun Mehta",
		Email:     "buyer@demo.com",
		Role:      model.RoleBuyer,
		KYCStatus: model.KYCApproved,
	}
}

func TestSessionStore_LoginPersistsToken(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewSessionStore(storage)

	s.Login(demoBuyer(), "demo-buyer-token")

	state := s.State()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "demo-buyer-token", state.Token)
	require.NotNil(t, state.User)
	assert.Equal(t, "Arjun Mehta", state.User.Name)

	token, ok, err := storage.Get(TokenStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "demo-buyer-token", token)
}

func TestSessionStore_LogoutRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewSessionStore(storage)
	initial := s.State()

	s.Login(demoBuyer(), "tok")
	s.Logout()

	assert.Equal(t, initial, s.State())
	_, ok, _ := storage.Get(TokenStorageKey)
	assert.False(t, ok)
	_, ok, _ = storage.Get(SessionStorageKey)
	assert.False(t, ok)

	// idempotent
	s.Logout()
	assert.Equal(t, initial, s.State())
}

func TestSessionStore_UpdateUser(t *testing.T) {
	s := NewSessionStore(nil)

	assert.False(t, s.UpdateUser(model.UserPatch{Name: ptr("Nobody")}))
	assert.Nil(t, s.State().User)

	s.Login(demoBuyer(), "tok")
	assert.True(t, s.UpdateUser(model.UserPatch{Bio: ptr("Looking for SaaS")}))

	u := s.State().User
	require.NotNil(t, u)
	assert.Equal(t, "Looking for SaaS", u.Bio)
	assert.Equal(t, "Arjun Mehta", u.Name)
	assert.Equal(t, "buyer@demo.com", u.Email)
}

func TestSessionStore_StateIsACopy(t *testing.T) {
	s := NewSessionStore(nil)
	s.Login(demoBuyer(), "tok")

	state := s.State()
	state.User.Name = "mutated"

	assert.Equal(t, "Arjun Mehta", s.State().User.Name)
}

func TestSessionStore_SetLoading(t *testing.T) {
	s := NewSessionStore(nil)

	s.SetLoading(true)
	assert.True(t, s.State().IsLoading)
	assert.False(t, s.IsAuthenticated())

	s.Login(demoBuyer(), "tok")
	assert.False(t, s.State().IsLoading)
}

func TestSessionStore_RestoresFromFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	first := NewSessionStore(NewFileStorage(path))
	first.Login(demoBuyer(), "persisted-token")
	first.UpdateUser(model.UserPatch{Company: ptr("TechVentures India")})

	second := NewSessionStore(NewFileStorage(path))
	state := second.State()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "persisted-token", second.Token())
	require.NotNil(t, state.User)
	assert.Equal(t, "TechVentures India", state.User.Company)

	second.Logout()
	third := NewSessionStore(NewFileStorage(path))
	assert.False(t, third.IsAuthenticated())
}

func TestSessionStore_IgnoresCorruptPersistedState(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(SessionStorageKey, "{not json"))

	s := NewSessionStore(storage)

	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_HandleError(t *testing.T) {
	s := NewSessionStore(NewMemoryStorage())
	s.Login(demoBuyer(), "tok")

	for _, err := range []error{
		fmt.Errorf("submit offer: %w", ErrValidation),
		&APIError{Status: 503},
		errors.New("dial tcp: connection refused"),
	} {
		assert.Equal(t, err, s.HandleError(err))
		assert.True(t, s.IsAuthenticated())
	}

	err := &APIError{Status: 401, Message: "Invalid or expired token"}
	assert.Equal(t, error(err), s.HandleError(err))
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_PersistedFormat(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewSessionStore(storage)
	s.Login(demoBuyer(), "tok")

	raw, ok, err := storage.Get(SessionStorageKey)
	require.NoError(t, err)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "tok", decoded["token"])
	assert.Equal(t, true, decoded["is_authenticated"])
	assert.NotContains(t, raw, "password")
}
