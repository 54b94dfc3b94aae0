package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/markdown"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setupTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "inkwell-api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	server := NewServer(
		service.NewAuthService(st, tokenService, nil),
		service.NewFolderService(st, nil),
		service.NewNoteService(st, markdown.NewRenderer(), nil),
		service.NewAdminService(st, nil),
		nil,
		false,
	)

	cleanup := func() {
		server.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return server, cleanup
}

// doRequest performs a request against the server, attaching the session
// cookie when one is given.
func doRequest(t *testing.T, server *Server, method, path, body, cookie string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates an account through the API and returns the
// session cookie value.
func registerAndLogin(t *testing.T, server *Server, username string) string {
	t.Helper()

	body := `{"username":"` + username + `","password":"password-123"}`

	rec := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, server, http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			require.True(t, c.HttpOnly)
			return c.Value
		}
	}
	t.Fatal("login response did not set session cookie")
	return ""
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data    map[string]any `json:"data"`
		Error   string         `json:"error"`
		Code    string         `json:"code"`
		Success bool           `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Code
}

func TestHealthCheck(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(t, server, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRegisterLoginFlow(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	cookie := registerAndLogin(t, server, "alice")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, true, data["is_admin"]) // first registrant
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestRegister_Duplicate(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	body := `{"username":"alice","password":"password-123"}`

	rec := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_USERNAME", decodeErrorCode(t, rec))
}

func TestLogin_BadCredentials(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	registerAndLogin(t, server, "alice")

	rec := doRequest(t, server, http.MethodPost, "/api/v1/auth/login",
		`{"username":"alice","password":"wrong-password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeErrorCode(t, rec))
}

func TestRequireAuth_NoCookie(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(t, server, http.MethodGet, "/api/v1/notes/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_GarbageCookie(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(t, server, http.MethodGet, "/api/v1/notes/", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	cookie := registerAndLogin(t, server, "alice")

	rec := doRequest(t, server, http.MethodPost, "/api/v1/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// Old cookie no longer resolves
	rec = doRequest(t, server, http.MethodGet, "/api/v1/users/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteCRUDFlow(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	cookie := registerAndLogin(t, server, "alice")

	// Create
	rec := doRequest(t, server, http.MethodPost, "/api/v1/notes/",
		`{"title":"Groceries","content":"- milk"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	noteID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, noteID)

	// Read with rendered HTML
	rec = doRequest(t, server, http.MethodGet, "/api/v1/notes/"+noteID, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "Groceries", data["title"])
	assert.Contains(t, data["content_html"], "<li>milk</li>")

	// Update
	rec = doRequest(t, server, http.MethodPut, "/api/v1/notes/"+noteID,
		`{"title":"Shopping","content":"- milk\n- eggs"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shopping", decodeData(t, rec)["title"])

	// List
	rec = doRequest(t, server, http.MethodGet, "/api/v1/notes/", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = doRequest(t, server, http.MethodDelete, "/api/v1/notes/"+noteID, "", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/notes/"+noteID, "", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotes_CrossUserInvisibility(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	aliceCookie := registerAndLogin(t, server, "alice")
	bobCookie := registerAndLogin(t, server, "bob")

	rec := doRequest(t, server, http.MethodPost, "/api/v1/notes/",
		`{"title":"Private"}`, aliceCookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	noteID, _ := decodeData(t, rec)["id"].(string)

	// Bob cannot see it
	rec = doRequest(t, server, http.MethodGet, "/api/v1/notes/"+noteID, "", bobCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bob's listing is empty
	rec = doRequest(t, server, http.MethodGet, "/api/v1/notes/", "", bobCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Private")
}

func TestSearch_InvalidPattern(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	cookie := registerAndLogin(t, server, "alice")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/notes/search?q=%28%5B", "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PATTERN", decodeErrorCode(t, rec))
}

func TestListNotes_MalformedFolderFilter(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	cookie := registerAndLogin(t, server, "alice")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/notes/?folder=bogus", "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FOLDER_REFERENCE", decodeErrorCode(t, rec))
}

func TestAdmin_GatedForNonAdmins(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	registerAndLogin(t, server, "admin") // first registrant is admin
	bobCookie := registerAndLogin(t, server, "bob")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/admin/users", "", bobCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_ListAndToggle(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookie := registerAndLogin(t, server, "admin")
	registerAndLogin(t, server, "bob")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/admin/users", "", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob")
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// Find bob's id from the listing
	data := decodeData(t, rec)
	usersAny, _ := data["users"].([]any)
	require.NotEmpty(t, usersAny)

	var bobID string
	for _, u := range usersAny {
		m, _ := u.(map[string]any)
		if m["username"] == "bob" {
			bobID, _ = m["id"].(string)
		}
	}
	require.NotEmpty(t, bobID)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/admin/users/"+bobID+"/toggle-admin", "", adminCookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdmin_SelfDeleteForbidden(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookie := registerAndLogin(t, server, "admin")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/me", "", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	adminID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, adminID)

	rec = doRequest(t, server, http.MethodDelete, "/api/v1/admin/users/"+adminID, "", adminCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "SELF_ACTION_FORBIDDEN", decodeErrorCode(t, rec))
}

func TestAdmin_DeleteUserRevokesSessions(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	adminCookie := registerAndLogin(t, server, "admin")
	bobCookie := registerAndLogin(t, server, "bob")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/me", "", bobCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	bobID, _ := decodeData(t, rec)["id"].(string)

	rec = doRequest(t, server, http.MethodDelete, "/api/v1/admin/users/"+bobID, "", adminCookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Bob's session is gone
	rec = doRequest(t, server, http.MethodGet, "/api/v1/users/me", "", bobCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
