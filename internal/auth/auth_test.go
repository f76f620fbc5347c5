package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energosphere-server/pkg/logger"
)

func newAuthForTests(t *testing.T) *Auth {
	t.Helper()
	logger.Init()
	a, err := NewAuth(t.TempDir())
	require.NoError(t, err)
	return a
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAuthForTests(t)

	token, err := a.Register("Alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Токен регистрации сразу валиден и содержит имя пользователя.
	username, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", username)

	// Повторная регистрация того же имени отклоняется.
	_, err = a.Register("alice", "another123")
	assert.ErrorIs(t, err, ErrUserExists)

	// Вход с верным паролем.
	token2, err := a.Login("Alice", "secret123")
	require.NoError(t, err)
	username, err = a.VerifyToken(token2)
	require.NoError(t, err)
	assert.Equal(t, "Alice", username)

	// Вход с неверным паролем.
	_, err = a.Login("Alice", "wrongpass")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRegister_WeakPassword(t *testing.T) {
	a := newAuthForTests(t)

	_, err := a.Register("bob", "123")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = a.Register("", "longenough")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestVerifyToken_Garbage(t *testing.T) {
	a := newAuthForTests(t)

	_, err := a.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.VerifyToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_ForeignKeyRejected(t *testing.T) {
	dir := t.TempDir()
	logger.Init()
	a1, err := NewAuth(dir)
	require.NoError(t, err)
	a2 := newAuthForTests(t) // другой каталог - другой ключ подписи

	token, err := a1.IssueToken("mallory")
	require.NoError(t, err)

	_, err = a2.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHandleRegister_HTTP(t *testing.T) {
	a := newAuthForTests(t)

	body, _ := json.Marshal(map[string]string{"username": "carol", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	a.HandleRegister(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)

	username, err := a.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "carol", username)

	// GET запрещен.
	rec = httptest.NewRecorder()
	a.HandleRegister(rec, httptest.NewRequest(http.MethodGet, "/api/register", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
