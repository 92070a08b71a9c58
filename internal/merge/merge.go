package merge

import (
	"context"
	"fmt"
	"log"
	"shoppingts/internal/cart"
	"shoppingts/internal/metrics"
	"shoppingts/internal/model"
	"shoppingts/internal/notify"
	"shoppingts/internal/storage"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Delta - изменение одной позиции корзины при слиянии.
type Delta struct {
	ID    string `json:"id"`
	Added int    `json:"added"`
	Prev  int    `json:"prev"`
	Now   int    `json:"now"`
}

// Summary - итог слияния гостевой сессии с данными пользователя.
type Summary struct {
	Cart      []Delta  `json:"cart"`
	Favorites []string `json:"favorites"`
}

func (s Summary) Empty() bool {
	return len(s.Cart) == 0 && len(s.Favorites) == 0
}

// Titles отдает название товара по id.
type Titles interface {
	Title(id string) string
}

// Message формирует текст для пользователя, например
// "장바구니에 2개 상품을 합쳤습니다: Widget 1→3, Gadget 0→1".
// Пустая строка, если сливать было нечего.
func (s Summary) Message(titles Titles) string {
	parts := make([]string, 0, 2)

	if len(s.Cart) > 0 {
		changes := make([]string, 0, len(s.Cart))
		for _, d := range s.Cart {
			changes = append(changes, fmt.Sprintf("%s %d→%d", titles.Title(d.ID), d.Prev, d.Now))
		}
		parts = append(parts, fmt.Sprintf("장바구니에 %d개 상품을 합쳤습니다: %s", len(s.Cart), strings.Join(changes, ", ")))
	}
	if len(s.Favorites) > 0 {
		parts = append(parts, fmt.Sprintf("즐겨찾기에 %d개 상품을 추가했습니다", len(s.Favorites)))
	}

	return strings.Join(parts, ". ")
}

// Engine переносит гостевые корзину и избранное вкладки в долговременное
// хранилище. Вызывается один раз сразу после успешного входа.
type Engine struct {
	guest  *cart.Store
	user   *cart.Store
	policy *storage.Policy
	tracer trace.Tracer // Для трассировки
}

func NewEngine(policy *storage.Policy, resolver cart.Resolver, notifier notify.Notifier) *Engine {
	return &Engine{
		guest:  cart.NewStore(policy.SessionScoped(), resolver, notify.Multi{}),
		user:   cart.NewStore(policy.Durable(), resolver, notifier),
		policy: policy,
		tracer: otel.Tracer("session-merge"),
	}
}

// Merge складывает количества (now = max(1, prev+added)), объединяет избранное
// как множество и удаляет гостевые копии. Устаревшие форматы обеих сторон
// мигрируются при чтении.
func (e *Engine) Merge(ctx context.Context) Summary {
	ctx, span := e.tracer.Start(ctx, "Session.Merge")
	defer span.End()

	summary := Summary{Cart: []Delta{}, Favorites: []string{}}

	guestCart := e.guest.Cart(ctx)
	if len(guestCart) > 0 {
		merged, deltas := mergeCart(e.user.Cart(ctx), guestCart)
		e.user.SetCart(ctx, merged)
		summary.Cart = deltas
	}
	e.policy.SessionScoped().Remove(ctx, cart.CartKey)

	guestFavs := e.guest.Favorites(ctx)
	if len(guestFavs) > 0 {
		merged, added := mergeFavorites(e.user.Favorites(ctx), guestFavs)
		if len(added) > 0 {
			e.user.SetFavorites(ctx, merged)
		}
		summary.Favorites = added
	}
	e.policy.SessionScoped().Remove(ctx, cart.FavoritesKey)

	metrics.SessionMerges.Inc()
	span.SetAttributes(
		attribute.Int("merge.cart", len(summary.Cart)),
		attribute.Int("merge.favorites", len(summary.Favorites)),
	)
	if !summary.Empty() {
		log.Printf("Гостевая сессия слита: корзина %d, избранное %d", len(summary.Cart), len(summary.Favorites))
	}
	return summary
}

func mergeCart(durable, guest []model.CartItem) ([]model.CartItem, []Delta) {
	merged := append([]model.CartItem(nil), durable...)
	deltas := make([]Delta, 0, len(guest))

	for _, g := range guest {
		idx := -1
		for i := range merged {
			if merged[i].ID == g.ID {
				idx = i
				break
			}
		}

		if idx < 0 {
			merged = append(merged, g)
			deltas = append(deltas, Delta{ID: g.ID, Added: g.Qty, Prev: 0, Now: g.Qty})
			continue
		}

		prev := merged[idx].Qty
		merged[idx].Qty = max(1, prev+g.Qty)
		deltas = append(deltas, Delta{ID: g.ID, Added: g.Qty, Prev: prev, Now: merged[idx].Qty})
	}

	return merged, deltas
}

func mergeFavorites(durable, guest []string) ([]string, []string) {
	merged := append([]string(nil), durable...)
	seen := make(map[string]struct{}, len(durable)+len(guest))
	for _, id := range durable {
		seen[id] = struct{}{}
	}

	added := []string{}
	for _, id := range guest {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
		added = append(added, id)
	}
	return merged, added
}
