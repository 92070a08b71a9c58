package cart

import (
	"context"
	"shoppingts/internal/catalog"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/model"
	"shoppingts/internal/notify"
	"shoppingts/internal/storage"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]model.Product{
		{ID: "p1", Title: "게이밍 노트북", Price: "₩1,500,000"},
		{ID: "p2", Title: "무선 이어폰", Price: "₩129,000"},
		{ID: "p3", Title: "Widget Title", Price: "₩9,900"},
	})
}

type fixture struct {
	store    *Store
	policy   *storage.Policy
	session  *storage.Session
	durable  *kvstore.Memory
	tab      *kvstore.Memory
	recorder *notify.Recorder
	catalog  *catalog.Catalog
}

func newFixture() *fixture {
	durable := kvstore.NewMemory()
	tab := kvstore.NewMemory()
	session := storage.NewSession(tab)
	policy := storage.NewPolicy(durable, tab, session)
	rec := &notify.Recorder{}
	c := testCatalog()
	return &fixture{
		store:    NewStore(policy, c, rec),
		policy:   policy,
		session:  session,
		durable:  durable,
		tab:      tab,
		recorder: rec,
		catalog:  c,
	}
}

func rawValue(t *testing.T, s kvstore.Store, key string) string {
	t.Helper()
	v, found, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found, "ключ %s должен существовать", key)
	return v
}

func TestDecodeCart_Precedence(t *testing.T) {
	c := testCatalog()

	items, shape := DecodeCart(`[{"id":"p1","qty":2},{"id":"","qty":1},{"id":"p2","qty":0}]`, c)
	assert.Equal(t, ShapeModern, shape)
	assert.Equal(t, []model.CartItem{{ID: "p1", Qty: 2}, {ID: "p2", Qty: 1}}, items)

	items, shape = DecodeCart(`["p1","p1","Widget Title","unknown"]`, c)
	assert.Equal(t, ShapeLegacy, shape)
	assert.Equal(t, []model.CartItem{
		{ID: "p1", Qty: 1},
		{ID: "p1", Qty: 1},
		{ID: "p3", Qty: 1},
		{ID: "unknown", Qty: 1},
	}, items)

	items, shape = DecodeCart(`{not json`, c)
	assert.Equal(t, ShapeEmpty, shape)
	assert.Empty(t, items)

	items, shape = DecodeCart(`[]`, c)
	assert.Equal(t, ShapeModern, shape)
	assert.Empty(t, items)
}

func TestDecodeFavorites(t *testing.T) {
	c := testCatalog()

	ids, shape := DecodeFavorites(`["p1","p2"]`, c)
	assert.Equal(t, ShapeModern, shape)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	ids, shape = DecodeFavorites(`["무선 이어폰","p2","gone","p1"]`, c)
	assert.Equal(t, ShapeLegacy, shape)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	ids, shape = DecodeFavorites(`42`, c)
	assert.Equal(t, ShapeEmpty, shape)
	assert.Empty(t, ids)
}

func TestCart_LegacyMigratedAndWrittenBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.tab.Set(ctx, CartKey, `["p1","p1","Widget Title"]`))

	items := f.store.Cart(ctx)

	assert.Equal(t, []model.CartItem{{ID: "p1", Qty: 1}, {ID: "p1", Qty: 1}, {ID: "p3", Qty: 1}}, items)
	assert.JSONEq(t, `[{"id":"p1","qty":1},{"id":"p1","qty":1},{"id":"p3","qty":1}]`, rawValue(t, f.tab, CartKey))
}

func TestCart_MissingKeyIsEmpty(t *testing.T) {
	f := newFixture()
	items := f.store.Cart(context.Background())
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAdd_IncrementsOrAppends(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.Equal(t, 1, f.store.Add(ctx, "p1"))
	assert.Equal(t, 2, f.store.Add(ctx, "p1"))
	assert.Equal(t, 1, f.store.Add(ctx, "p2"))

	assert.Equal(t, []model.CartItem{{ID: "p1", Qty: 2}, {ID: "p2", Qty: 1}}, f.store.Cart(ctx))

	last, ok := f.recorder.Last(notify.KindCartChanged)
	require.True(t, ok)
	assert.Equal(t, 3, last.Count)
}

func TestChangeQty_FloorOfOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.SetCart(ctx, []model.CartItem{{ID: "p1", Qty: 2}})

	qty, changed := f.store.ChangeQty(ctx, "p1", -1)
	assert.True(t, changed)
	assert.Equal(t, 1, qty)

	eventsBefore := len(f.recorder.Events())
	qty, changed = f.store.ChangeQty(ctx, "p1", -1)
	assert.False(t, changed)
	assert.Equal(t, 1, qty)
	assert.Len(t, f.recorder.Events(), eventsBefore, "no-op не должен порождать событий")

	qty, changed = f.store.ChangeQty(ctx, "p1", +3)
	assert.True(t, changed)
	assert.Equal(t, 4, qty)

	_, changed = f.store.ChangeQty(ctx, "missing", 1)
	assert.False(t, changed)
}

func TestRemoveClearQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.SetCart(ctx, []model.CartItem{{ID: "p1", Qty: 2}, {ID: "p2", Qty: 1}})

	assert.Equal(t, 2, f.store.Quantity(ctx, "p1"))
	assert.True(t, f.store.Remove(ctx, "p1"))
	assert.False(t, f.store.Remove(ctx, "p1"))
	assert.Equal(t, 0, f.store.Quantity(ctx, "p1"))

	f.store.Clear(ctx)
	assert.Empty(t, f.store.Cart(ctx))
	assert.JSONEq(t, `[]`, rawValue(t, f.tab, CartKey))

	last, _ := f.recorder.Last(notify.KindCartChanged)
	assert.Equal(t, 0, last.Count)
}

func TestCart_FollowsAuthState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.Add(ctx, "p1")
	f.session.SignIn(ctx, "abcd1234")
	f.store.Add(ctx, "p2")

	assert.JSONEq(t, `[{"id":"p1","qty":1}]`, rawValue(t, f.tab, CartKey))
	assert.JSONEq(t, `[{"id":"p2","qty":1}]`, rawValue(t, f.durable, CartKey))
}

func TestFavorites_ToggleAndLookup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.True(t, f.store.ToggleFavorite(ctx, "p2"))
	assert.True(t, f.store.IsFavorite(ctx, "p2"))
	assert.True(t, f.store.IsFavorite(ctx, "무선 이어폰"))
	assert.False(t, f.store.IsFavorite(ctx, ""))

	assert.False(t, f.store.ToggleFavorite(ctx, "p2"))
	assert.False(t, f.store.IsFavorite(ctx, "p2"))

	f.store.SetFavorites(ctx, []string{"p1", "p1", "p3"})
	assert.Equal(t, []string{"p1", "p3"}, f.store.Favorites(ctx))
	assert.True(t, f.store.RemoveFavorite(ctx, "p1"))
	assert.False(t, f.store.RemoveFavorite(ctx, "p1"))

	last, ok := f.recorder.Last(notify.KindFavoritesChanged)
	require.True(t, ok)
	assert.Equal(t, 1, last.Count)
}

func TestFavorites_LegacyTitlesMigrated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.tab.Set(ctx, FavoritesKey, `["Widget Title","removed product"]`))

	assert.Equal(t, []string{"p3"}, f.store.Favorites(ctx))
	assert.JSONEq(t, `["p3"]`, rawValue(t, f.tab, FavoritesKey))
}

func TestMoveAllFavoritesToCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.SetCart(ctx, []model.CartItem{{ID: "p1", Qty: 2}})
	f.store.SetFavorites(ctx, []string{"p1", "p2"})

	moved := f.store.MoveAllFavoritesToCart(ctx)

	assert.Equal(t, 2, moved)
	assert.Equal(t, []model.CartItem{{ID: "p1", Qty: 3}, {ID: "p2", Qty: 1}}, f.store.Cart(ctx))
	assert.Empty(t, f.store.Favorites(ctx))
}

func TestLinesAndTotal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.SetCart(ctx, []model.CartItem{{ID: "p2", Qty: 2}, {ID: "ghost", Qty: 5}, {ID: "p3", Qty: 1}})

	lines := f.store.Lines(ctx, f.catalog)

	require.Len(t, lines, 2)
	assert.Equal(t, "무선 이어폰", lines[0].Product.Title)
	assert.Equal(t, 258000, lines[0].Subtotal)
	assert.Equal(t, 9900, lines[1].Subtotal)
	assert.Equal(t, 267900, Total(lines))
}

func TestStore_DegradedStorageNeverPanics(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.tab.Disable()

	assert.Equal(t, 1, f.store.Add(ctx, "p1"))
	assert.Empty(t, f.store.Cart(ctx))
}
