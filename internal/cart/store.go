package cart

import (
	"context"
	"encoding/json"
	"log"
	"shoppingts/internal/catalog"
	"shoppingts/internal/metrics"
	"shoppingts/internal/model"
	"shoppingts/internal/notify"
	"shoppingts/internal/storage"
)

// Ключи корзины и избранного. Одинаковы в обоих хранилищах.
const (
	CartKey      = "cartItems"
	FavoritesKey = "favorites"
)

// Store - корзина и избранное поверх одного Bucket.
// С storage.Policy работает с хранилищем текущего состояния входа,
// с Policy.Durable()/SessionScoped() - с конкретным хранилищем.
type Store struct {
	bucket   storage.Bucket
	resolver Resolver
	notifier notify.Notifier
}

func NewStore(bucket storage.Bucket, resolver Resolver, notifier notify.Notifier) *Store {
	return &Store{bucket: bucket, resolver: resolver, notifier: notifier}
}

// Line - позиция корзины вместе с товаром каталога.
type Line struct {
	Product  model.Product `json:"product"`
	Qty      int           `json:"qty"`
	Subtotal int           `json:"subtotal"`
}

// Cart читает корзину. Устаревший формат сразу перезаписывается текущим.
func (s *Store) Cart(ctx context.Context) []model.CartItem {
	raw, found := s.bucket.Get(ctx, CartKey)
	if !found {
		return []model.CartItem{}
	}

	items, shape := DecodeCart(raw, s.resolver)
	if shape == ShapeLegacy {
		metrics.LegacyMigrations.WithLabelValues("cart").Inc()
		s.write(ctx, CartKey, items)
	}
	return items
}

// SetCart сохраняет корзину и сообщает новое общее количество товаров.
func (s *Store) SetCart(ctx context.Context, items []model.CartItem) {
	if items == nil {
		items = []model.CartItem{}
	}
	s.write(ctx, CartKey, items)
	s.notifier.Notify(ctx, notify.CartChanged(model.TotalQty(items)))
}

// Add увеличивает количество товара на 1 или добавляет позицию. Возвращает новое количество.
func (s *Store) Add(ctx context.Context, id string) int {
	items := s.Cart(ctx)
	for i := range items {
		if items[i].ID == id {
			items[i].Qty = max(1, items[i].Qty+1)
			s.SetCart(ctx, items)
			return items[i].Qty
		}
	}

	items = append(items, model.CartItem{ID: id, Qty: 1})
	s.SetCart(ctx, items)
	return 1
}

// ChangeQty меняет количество на delta. Количество не опускается ниже 1:
// уменьшение позиции с qty 1 ничего не делает и возвращает changed == false,
// удалять позицию нужно через Remove.
func (s *Store) ChangeQty(ctx context.Context, id string, delta int) (qty int, changed bool) {
	items := s.Cart(ctx)
	for i := range items {
		if items[i].ID != id {
			continue
		}
		next := items[i].Qty + delta
		if next < 1 || delta == 0 {
			return items[i].Qty, false
		}
		items[i].Qty = next
		s.SetCart(ctx, items)
		return next, true
	}
	return 0, false
}

// Remove удаляет позицию. false, если товара в корзине не было.
func (s *Store) Remove(ctx context.Context, id string) bool {
	items := s.Cart(ctx)
	remaining := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			remaining = append(remaining, it)
		}
	}
	if len(remaining) == len(items) {
		return false
	}
	s.SetCart(ctx, remaining)
	return true
}

func (s *Store) Clear(ctx context.Context) {
	s.SetCart(ctx, []model.CartItem{})
}

// Quantity возвращает количество товара в корзине, 0 если его нет.
func (s *Store) Quantity(ctx context.Context, id string) int {
	for _, it := range s.Cart(ctx) {
		if it.ID == id {
			return it.Qty
		}
	}
	return 0
}

// Favorites читает избранное, приводя названия к id.
func (s *Store) Favorites(ctx context.Context) []string {
	raw, found := s.bucket.Get(ctx, FavoritesKey)
	if !found {
		return []string{}
	}

	ids, shape := DecodeFavorites(raw, s.resolver)
	if shape == ShapeLegacy {
		metrics.LegacyMigrations.WithLabelValues("favorites").Inc()
		s.write(ctx, FavoritesKey, ids)
	}
	return ids
}

// SetFavorites сохраняет избранное без повторов и сообщает их количество.
func (s *Store) SetFavorites(ctx context.Context, ids []string) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	s.write(ctx, FavoritesKey, unique)
	s.notifier.Notify(ctx, notify.FavoritesChanged(len(unique)))
}

// ToggleFavorite добавляет или убирает товар. Возвращает true, если товар теперь в избранном.
func (s *Store) ToggleFavorite(ctx context.Context, id string) bool {
	favs := s.Favorites(ctx)
	for i, f := range favs {
		if f == id {
			s.SetFavorites(ctx, append(favs[:i], favs[i+1:]...))
			return false
		}
	}
	s.SetFavorites(ctx, append(favs, id))
	return true
}

// IsFavorite принимает id или название товара.
func (s *Store) IsFavorite(ctx context.Context, idOrTitle string) bool {
	if idOrTitle == "" {
		return false
	}
	favs := s.Favorites(ctx)
	if contains(favs, idOrTitle) {
		return true
	}
	id, ok := s.resolver.ResolveID(idOrTitle)
	return ok && contains(favs, id)
}

// RemoveFavorite убирает товар из избранного. false, если его там не было.
func (s *Store) RemoveFavorite(ctx context.Context, id string) bool {
	favs := s.Favorites(ctx)
	for i, f := range favs {
		if f == id {
			s.SetFavorites(ctx, append(favs[:i], favs[i+1:]...))
			return true
		}
	}
	return false
}

// MoveAllFavoritesToCart переносит все избранное в корзину (+1 к количеству
// или новая позиция) и очищает избранное. Возвращает число перенесенных товаров.
func (s *Store) MoveAllFavoritesToCart(ctx context.Context) int {
	favs := s.Favorites(ctx)
	items := s.Cart(ctx)

	for _, id := range favs {
		found := false
		for i := range items {
			if items[i].ID == id {
				items[i].Qty++
				found = true
				break
			}
		}
		if !found {
			items = append(items, model.CartItem{ID: id, Qty: 1})
		}
	}

	s.SetCart(ctx, items)
	s.SetFavorites(ctx, []string{})
	return len(favs)
}

// Lines соединяет корзину с каталогом. Товары, которых нет в каталоге, пропускаются.
func (s *Store) Lines(ctx context.Context, c *catalog.Catalog) []Line {
	items := s.Cart(ctx)
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		p, ok := c.ByID(it.ID)
		if !ok {
			continue
		}
		lines = append(lines, Line{
			Product:  p,
			Qty:      it.Qty,
			Subtotal: catalog.ParsePrice(p.Price) * it.Qty,
		})
	}
	return lines
}

// Total - сумма подытогов.
func Total(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Subtotal
	}
	return total
}

func (s *Store) write(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Не удалось сериализовать %s: %v", key, err)
		return
	}
	s.bucket.Set(ctx, key, string(data))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
