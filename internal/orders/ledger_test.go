package orders

import (
	"context"
	"math/rand"
	"regexp"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/model"
	"shoppingts/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCart struct{ cleared int }

func (f *fakeCart) Clear(context.Context) { f.cleared++ }

func setup() (*Ledger, *storage.Session, *kvstore.Memory, *kvstore.Memory, *fakeCart) {
	durable := kvstore.NewMemory()
	tab := kvstore.NewMemory()
	session := storage.NewSession(tab)
	c := &fakeCart{}
	return NewLedger(storage.NewPolicy(durable, tab, session), session, c), session, durable, tab, c
}

func TestGenerateOrderID_Format(t *testing.T) {
	now := time.Now()
	rng := rand.New(rand.NewSource(1))
	re := regexp.MustCompile(`^OID\d{8}\d{4}$`)

	for i := 0; i < 200; i++ {
		id := GenerateOrderID(now, rng)
		require.Regexp(t, re, id)
		assert.Equal(t, "OID"+now.Local().Format("20060102"), id[:11])
		suffix := id[11:]
		assert.True(t, suffix >= "1000" && suffix <= "9999", suffix)
	}
}

func TestPlaceOrder_RejectsEmptyCart(t *testing.T) {
	l, _, _, _, c := setup()

	_, err := l.PlaceOrder(context.Background(), nil, 0, "abcd1234")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, c.cleared)
}

func TestPlaceOrder_UserLedgerIsDurableAndNewestFirst(t *testing.T) {
	l, _, durable, tab, c := setup()
	ctx := context.Background()

	first, err := l.PlaceOrder(ctx, []model.CartItem{{ID: "p1", Qty: 2}}, 2000, "abcd1234")
	require.NoError(t, err)
	second, err := l.PlaceOrder(ctx, []model.CartItem{{ID: "p2", Qty: 1}}, 500, "abcd1234")
	require.NoError(t, err)

	list := l.Orders(ctx, "abcd1234")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "접수", list[0].Status)
	assert.Equal(t, "abcd1234", list[0].Username)
	assert.Equal(t, 2, c.cleared)

	_, found, _ := durable.Get(ctx, "orders:abcd1234")
	assert.True(t, found)
	assert.Zero(t, tab.Len())
}

func TestPlaceOrder_GuestLedgerIsSessionScoped(t *testing.T) {
	l, _, durable, tab, _ := setup()
	ctx := context.Background()

	_, err := l.PlaceOrder(ctx, []model.CartItem{{ID: "p1", Qty: 1}}, 1000, "")
	require.NoError(t, err)

	_, found, _ := tab.Get(ctx, "orders:guest")
	assert.True(t, found)
	assert.Zero(t, durable.Len())
	assert.Len(t, l.Preferred(ctx), 1)
}

func TestOrders_MalformedIsEmpty(t *testing.T) {
	l, _, durable, _, _ := setup()
	ctx := context.Background()
	require.NoError(t, durable.Set(ctx, "orders:abcd1234", `{"oops":true}`))

	assert.Empty(t, l.Orders(ctx, "abcd1234"))
	assert.NotNil(t, l.Orders(ctx, "nobody"))
}

func TestPreferred_FollowsSessionUser(t *testing.T) {
	l, session, _, _, _ := setup()
	ctx := context.Background()

	_, err := l.PlaceOrder(ctx, []model.CartItem{{ID: "p1", Qty: 1}}, 1000, "abcd1234")
	require.NoError(t, err)
	assert.Empty(t, l.Preferred(ctx))

	session.SignIn(ctx, "abcd1234")
	assert.Len(t, l.Preferred(ctx), 1)
}
