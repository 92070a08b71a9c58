package storage

import (
	"context"
	"shoppingts/internal/kvstore"
)

// Ключи флагов входа. Живут только в сессионном хранилище вкладки.
const (
	AuthedKey   = "shoppingts-info-authed"
	UsernameKey = "shoppingts-info-username"
)

// AuthState сообщает политике, выполнен ли вход.
type AuthState interface {
	IsAuthenticated(ctx context.Context) bool
}

// Session - состояние входа одной вкладки.
// Передается в Policy явно, глобального состояния нет.
type Session struct {
	store Bucket
}

// NewSession создает сессию поверх сессионного хранилища вкладки.
func NewSession(sessionScoped kvstore.Store) *Session {
	return &Session{store: Guard("session", sessionScoped)}
}

// IsAuthenticated - флаг входа равен строке "true".
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	v, ok := s.store.Get(ctx, AuthedKey)
	return ok && v == "true"
}

// Username возвращает имя вошедшего пользователя или "".
func (s *Session) Username(ctx context.Context) string {
	if !s.IsAuthenticated(ctx) {
		return ""
	}
	v, _ := s.store.Get(ctx, UsernameKey)
	return v
}

func (s *Session) SignIn(ctx context.Context, username string) {
	s.store.Set(ctx, AuthedKey, "true")
	s.store.Set(ctx, UsernameKey, username)
}

func (s *Session) SignOut(ctx context.Context) {
	s.store.Remove(ctx, AuthedKey)
	s.store.Remove(ctx, UsernameKey)
}
