// Package middleware содержит HTTP middleware витрины.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

const (
	sessionCookieName = "cart_session"
	sessionCookieTTL  = 30 * 24 * time.Hour
)

// SessionMiddleware связывает запрос с сессией корзины через подписанный cookie.
type SessionMiddleware struct {
	secretKey []byte
}

// NewSessionMiddleware создаёт SessionMiddleware. Пустой secret заменяется случайным ключом,
// и тогда cookie перестают действовать после перезапуска.
func NewSessionMiddleware(secret string) *SessionMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte("default-secret-key")
		}
	}

	return &SessionMiddleware{secretKey: key}
}

// Middleware добавляет идентификатор сессии в контекст. Если cookie нет или подпись не сходится,
// выдаётся новая сессия.
func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sessionID, _ = m.parseCookie(cookie.Value)
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			m.SetSessionCookie(w, sessionID)
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie устанавливает cookie с подписанным идентификатором сессии.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID + "." + m.sign(sessionID),
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionMiddleware) sign(sessionID string) string {
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *SessionMiddleware) parseCookie(value string) (string, bool) {
	id, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}

	if !hmac.Equal([]byte(signature), []byte(m.sign(id))) {
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}

	return id, true
}

// GetSessionIDFromContext извлекает идентификатор сессии из контекста запроса.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// WithSessionID возвращает контекст с идентификатором сессии.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}
