package storage

import (
	"context"
	"errors"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/kvstore/mocks"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestPolicy() (*Policy, *Session, *kvstore.Memory, *kvstore.Memory) {
	durable := kvstore.NewMemory()
	tab := kvstore.NewMemory()
	session := NewSession(tab)
	return NewPolicy(durable, tab, session), session, durable, tab
}

func TestPolicy_PreferredFollowsAuthState(t *testing.T) {
	p, session, _, _ := newTestPolicy()
	ctx := context.Background()

	assert.False(t, p.IsAuthenticated(ctx))
	assert.Same(t, p.SessionScoped(), p.Preferred(ctx))
	assert.Same(t, p.Durable(), p.Other(ctx))

	session.SignIn(ctx, "abcd1234")
	assert.True(t, p.IsAuthenticated(ctx))
	assert.Same(t, p.Durable(), p.Preferred(ctx))
	assert.Same(t, p.SessionScoped(), p.Other(ctx))

	session.SignOut(ctx)
	assert.False(t, p.IsAuthenticated(ctx))
}

func TestPolicy_AuthFlagMustBeExactlyTrue(t *testing.T) {
	p, _, _, tab := newTestPolicy()
	ctx := context.Background()

	_ = tab.Set(ctx, AuthedKey, "1")
	assert.False(t, p.IsAuthenticated(ctx))

	_ = tab.Set(ctx, AuthedKey, "true")
	assert.True(t, p.IsAuthenticated(ctx))
}

func TestPolicy_GetFallsBackOnlyWhenMissing(t *testing.T) {
	p, _, durable, tab := newTestPolicy()
	ctx := context.Background()

	// Ключа нет в сессионном (предпочтительном) - читаем из долговременного
	_ = durable.Set(ctx, "cartItems", `[{"id":"p1","qty":1}]`)
	v, ok := p.Get(ctx, "cartItems")
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1","qty":1}]`, v)

	// Пустая строка в предпочтительном - это найденное значение, фолбэка нет
	_ = tab.Set(ctx, "cartItems", "")
	v, ok = p.Get(ctx, "cartItems")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = p.Get(ctx, "nothing")
	assert.False(t, ok)
}

func TestPolicy_SetAndRemoveTouchOnlyPreferred(t *testing.T) {
	p, session, durable, tab := newTestPolicy()
	ctx := context.Background()

	p.Set(ctx, "favorites", `["p1"]`)
	_, inDurable, _ := durable.Get(ctx, "favorites")
	_, inTab, _ := tab.Get(ctx, "favorites")
	assert.False(t, inDurable)
	assert.True(t, inTab)

	session.SignIn(ctx, "abcd1234")
	p.Remove(ctx, "favorites")
	_, inTab, _ = tab.Get(ctx, "favorites")
	assert.True(t, inTab, "удаление не должно трогать сессионное хранилище после входа")
}

func TestPolicy_DegradesWhenStoreUnavailable(t *testing.T) {
	p, session, durable, _ := newTestPolicy()
	ctx := context.Background()
	session.SignIn(ctx, "abcd1234")

	durable.Disable()

	// Запись - тихий no-op, чтение - "не найдено", паники и ошибок нет
	p.Set(ctx, "cartItems", "[]")
	p.Remove(ctx, "cartItems")
	_, ok := p.Get(ctx, "cartItems")
	assert.False(t, ok)

	// После восстановления хранилища данных нет: потеря принята
	durable.Enable()
	_, ok = p.Get(ctx, "cartItems")
	assert.False(t, ok)
}

func TestPolicy_DegradesOnQuota(t *testing.T) {
	durable := kvstore.NewMemory()
	tab := kvstore.NewMemoryWithQuota(16)
	p := NewPolicy(durable, tab, NewSession(tab))
	ctx := context.Background()

	p.Set(ctx, "cartItems", `[{"id":"p1","qty":1}]`)
	_, ok := p.Get(ctx, "cartItems")
	assert.False(t, ok)
}

func TestPolicy_ReadErrorFallsBackToOther(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockStore(ctrl)
	tab := kvstore.NewMemory()
	ctx := context.Background()

	failing.EXPECT().Get(gomock.Any(), "favorites").Return("", false, errors.New("boom"))

	session := NewSession(tab)
	session.SignIn(ctx, "abcd1234")
	_ = tab.Set(ctx, "favorites", `["p2"]`)

	p := NewPolicy(failing, tab, session)
	v, ok := p.Get(ctx, "favorites")
	assert.True(t, ok)
	assert.Equal(t, `["p2"]`, v)
}

func TestGuard_CheckedSurfacesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockStore(ctrl)
	ctx := context.Background()
	boom := errors.New("boom")

	failing.EXPECT().Get(gomock.Any(), "users").Return("", false, boom).Times(2)
	failing.EXPECT().Set(gomock.Any(), "users", "[]").Return(boom).Times(2)

	g := Guard("durable", failing)

	// Bucket гасит ошибку, Checked ее отдает
	_, ok := g.Get(ctx, "users")
	assert.False(t, ok)
	_, _, err := g.Read(ctx, "users")
	assert.ErrorIs(t, err, boom)

	g.Set(ctx, "users", "[]")
	assert.ErrorIs(t, g.Write(ctx, "users", "[]"), boom)
}

func TestSession_Username(t *testing.T) {
	tab := kvstore.NewMemory()
	session := NewSession(tab)
	ctx := context.Background()

	assert.Equal(t, "", session.Username(ctx))

	session.SignIn(ctx, "abcd1234")
	assert.Equal(t, "abcd1234", session.Username(ctx))

	session.SignOut(ctx)
	assert.Equal(t, "", session.Username(ctx))
	assert.Equal(t, 0, tab.Len())
}
