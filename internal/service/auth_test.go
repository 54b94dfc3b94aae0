package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/markdown"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed 32-byte key for tests.
const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type testServices struct {
	store   *store.Store
	auth    *AuthService
	folders *FolderService
	notes   *NoteService
	admin   *AdminService
}

func setupTestServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "inkwell-service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	svcs := &testServices{
		store:   st,
		auth:    NewAuthService(st, tokenService, nil),
		folders: NewFolderService(st, nil),
		notes:   NewNoteService(st, markdown.NewRenderer(), nil),
		admin:   NewAdminService(st, nil),
	}

	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return svcs, cleanup
}

// registerTestUser registers a user and returns their identity.
func registerTestUser(t *testing.T, svcs *testServices, username string) domain.Identity {
	t.Helper()

	user, err := svcs.auth.Register(context.Background(), RegisterRequest{
		Username: username,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	return domain.IdentityOf(user)
}

func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()

	first, err := svcs.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)

	second, err := svcs.auth.Register(ctx, RegisterRequest{Username: "bob", Password: "password123"})
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svcs.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	_, err = svcs.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "different-pass"})
	assertCode(t, err, domainerrors.CodeDuplicateUsername)
}

func TestRegister_UsernamesAreCaseSensitive(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svcs.auth.Register(ctx, RegisterRequest{Username: "Alice", Password: "password123"})
	require.NoError(t, err)

	// "alice" is a distinct account
	_, err = svcs.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svcs.auth.Register(ctx, RegisterRequest{Username: "", Password: "password123"})
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = svcs.auth.Register(ctx, RegisterRequest{Username: "alice", Password: "short"})
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestRegister_PasswordIsHashed(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	user, err := svcs.auth.Register(context.Background(), RegisterRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$argon2id$")
}

func TestLogin_Success(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	registerTestUser(t, svcs, "alice")

	result, err := svcs.auth.Login(ctx, LoginRequest{Username: "alice", Password: "correct-horse-battery"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.User.Username)
	assert.True(t, result.ExpiresAt.After(time.Now()))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	registerTestUser(t, svcs, "alice")

	// Wrong password for an existing user
	_, wrongPassErr := svcs.auth.Login(ctx, LoginRequest{Username: "alice", Password: "wrong-password"})
	assertCode(t, wrongPassErr, domainerrors.CodeInvalidCredentials)

	// Nonexistent user
	_, noUserErr := svcs.auth.Login(ctx, LoginRequest{Username: "nobody", Password: "wrong-password"})
	assertCode(t, noUserErr, domainerrors.CodeInvalidCredentials)

	// Same code and message either way
	assert.Equal(t, wrongPassErr.Error(), noUserErr.Error())
}

func TestResolveSession_RoundTrip(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	registered := registerTestUser(t, svcs, "alice")

	result, err := svcs.auth.Login(ctx, LoginRequest{Username: "alice", Password: "correct-horse-battery"})
	require.NoError(t, err)

	identity, err := svcs.auth.ResolveSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.ID)
	assert.Equal(t, "alice", identity.Username)
	assert.True(t, identity.IsAdmin)
}

func TestResolveSession_InvalidToken(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := svcs.auth.ResolveSession(context.Background(), "not-a-real-token")
	assertCode(t, err, domainerrors.CodeUnauthenticated)
}

func TestResolveSession_AfterLogout(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	registerTestUser(t, svcs, "alice")

	result, err := svcs.auth.Login(ctx, LoginRequest{Username: "alice", Password: "correct-horse-battery"})
	require.NoError(t, err)

	// Find the session via the token to log out
	identity, err := svcs.auth.ResolveSession(ctx, result.Token)
	require.NoError(t, err)
	require.NotEmpty(t, identity.ID)

	claims, err := svcs.auth.tokenService.VerifySessionToken(result.Token)
	require.NoError(t, err)
	require.NoError(t, svcs.auth.Logout(ctx, claims.SessionID))

	// Token still decrypts but the session record is gone
	_, err = svcs.auth.ResolveSession(ctx, result.Token)
	assertCode(t, err, domainerrors.CodeUnauthenticated)
}

func TestLogout_AbsentSession(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	// Logging out an unknown session succeeds
	err := svcs.auth.Logout(context.Background(), "session-missing")
	assert.NoError(t, err)
}

func TestResolveSession_DeletedUser(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	registerTestUser(t, svcs, "admin")
	bob := registerTestUser(t, svcs, "bob")

	result, err := svcs.auth.Login(ctx, LoginRequest{Username: "bob", Password: "correct-horse-battery"})
	require.NoError(t, err)

	// Remove the account behind the session
	require.NoError(t, svcs.store.DeleteUser(ctx, bob.ID))

	_, err = svcs.auth.ResolveSession(ctx, result.Token)
	assertCode(t, err, domainerrors.CodeUnauthenticated)
}
