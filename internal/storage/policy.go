package storage

import (
	"context"
	"shoppingts/internal/kvstore"
)

// Policy выбирает между долговременным и сессионным хранилищем.
// Решение принимается заново при каждом вызове: после входа предпочтительным
// становится долговременное хранилище, до входа - сессионное.
type Policy struct {
	durable       Checked
	sessionScoped Checked
	auth          AuthState
}

// NewPolicy собирает политику. auth обычно *Session той же вкладки.
func NewPolicy(durable, sessionScoped kvstore.Store, auth AuthState) *Policy {
	return &Policy{
		durable:       Guard("durable", durable),
		sessionScoped: Guard("session", sessionScoped),
		auth:          auth,
	}
}

func (p *Policy) IsAuthenticated(ctx context.Context) bool {
	return p.auth.IsAuthenticated(ctx)
}

// Preferred - хранилище, в которое идут запись и удаление.
func (p *Policy) Preferred(ctx context.Context) Bucket {
	if p.IsAuthenticated(ctx) {
		return p.durable
	}
	return p.sessionScoped
}

// Other - хранилище для чтения при промахе в Preferred.
func (p *Policy) Other(ctx context.Context) Bucket {
	if p.IsAuthenticated(ctx) {
		return p.sessionScoped
	}
	return p.durable
}

// Get читает из предпочтительного хранилища, при отсутствии ключа - из другого.
// Пустая строка считается найденным значением.
func (p *Policy) Get(ctx context.Context, key string) (string, bool) {
	if v, ok := p.Preferred(ctx).Get(ctx, key); ok {
		return v, true
	}
	return p.Other(ctx).Get(ctx, key)
}

// Set пишет только в предпочтительное хранилище.
func (p *Policy) Set(ctx context.Context, key, value string) {
	p.Preferred(ctx).Set(ctx, key, value)
}

// Remove удаляет только из предпочтительного хранилища.
func (p *Policy) Remove(ctx context.Context, key string) {
	p.Preferred(ctx).Remove(ctx, key)
}

// Durable - прямой доступ к долговременному хранилищу (аккаунты, слияние, заказы).
func (p *Policy) Durable() Checked {
	return p.durable
}

// SessionScoped - прямой доступ к сессионному хранилищу вкладки.
func (p *Policy) SessionScoped() Checked {
	return p.sessionScoped
}
