// Package auth реализует регистрацию и вход игроков.
// Пароли хешируются bcrypt, сессии - HMAC-подписанные JWT с ключом,
// который генерируется один раз и живет на диске рядом с данными.
package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"energosphere-server/pkg/logger"
)

const tokenTTL = 7 * 24 * time.Hour

var (
	ErrUserExists     = errors.New("username already exists")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrInvalidToken   = errors.New("invalid token")
)

// User это учетная запись игрока.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type userStore struct {
	mu    sync.RWMutex
	path  string
	users map[string]*User
}

func newUserStore(path string) (*userStore, error) {
	us := &userStore{path: path, users: map[string]*User{}}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &us.users); err != nil {
			return nil, err
		}
	}
	return us, nil
}

func (s *userStore) save() error {
	// Сериализуем под RLock, пишем файл без блокировки
	s.mu.RLock()
	b, err := json.MarshalIndent(s.users, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *userStore) exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[strings.ToLower(username)]
	return ok
}

func (s *userStore) get(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(username)]
	return u, ok
}

func (s *userStore) put(u *User) error {
	s.mu.Lock()
	s.users[strings.ToLower(u.Username)] = u
	s.mu.Unlock()
	return s.save()
}

// Auth выдает и проверяет сессионные токены.
type Auth struct {
	users  *userStore
	jwtKey []byte
	issuer string
}

// NewAuth открывает хранилище пользователей и ключ подписи в dataDir.
// Отсутствующий или слишком короткий ключ перегенерируется.
func NewAuth(dataDir string) (*Auth, error) {
	users, err := newUserStore(filepath.Join(dataDir, "users.json"))
	if err != nil {
		return nil, err
	}
	keyPath := filepath.Join(dataDir, "jwt.key")
	key, err := os.ReadFile(keyPath)
	if err != nil || len(key) < 32 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, err
		}
	}
	return &Auth{users: users, jwtKey: key, issuer: "energosphere"}, nil
}

// Register создает учетную запись и возвращает токен.
func (a *Auth) Register(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return "", ErrBadCredentials
	}
	if a.users.exists(username) {
		return "", ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	u := &User{Username: username, PasswordHash: string(hash), CreatedAt: time.Now()}
	if err := a.users.put(u); err != nil {
		return "", err
	}
	return a.IssueToken(username)
}

// Login проверяет пароль и возвращает токен.
func (a *Auth) Login(username, password string) (string, error) {
	u, ok := a.users.get(username)
	if !ok {
		return "", ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}
	return a.IssueToken(u.Username)
}

// IssueToken подписывает JWT на 7 дней.
func (a *Auth) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtKey)
}

// VerifyToken возвращает имя пользователя из валидного токена.
func (a *Auth) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.jwtKey, nil
	}, jwt.WithIssuer(a.issuer))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// --- HTTP ---

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	OK       bool   `json:"ok"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleRegister обрабатывает POST /api/register.
func (a *Auth) HandleRegister(w http.ResponseWriter, r *http.Request) {
	a.handleCredentials(w, r, a.Register)
}

// HandleLogin обрабатывает POST /api/login.
func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	a.handleCredentials(w, r, a.Login)
}

func (a *Auth) handleCredentials(w http.ResponseWriter, r *http.Request, fn func(string, string) (string, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	token, err := fn(req.Username, req.Password)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, ErrUserExists) {
			status = http.StatusConflict
		} else if errors.Is(err, ErrBadCredentials) && r.URL.Path == "/api/register" {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		if encErr := json.NewEncoder(w).Encode(tokenResp{Error: err.Error()}); encErr != nil {
			logger.Log.WithError(encErr).Warn("failed to encode auth error response")
		}
		return
	}

	if err := json.NewEncoder(w).Encode(tokenResp{OK: true, Username: strings.TrimSpace(req.Username), Token: token}); err != nil {
		logger.Log.WithError(err).Warn("failed to encode auth response")
	}
}
