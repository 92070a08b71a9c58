package cart

import (
	"encoding/json"
	"shoppingts/internal/model"
)

// Shape - в каком формате лежали данные в хранилище.
type Shape int

const (
	// ShapeEmpty - ключа нет или значение не разбирается. Трактуется как пустой список.
	ShapeEmpty Shape = iota
	// ShapeModern - текущий формат, миграция не нужна.
	ShapeModern
	// ShapeLegacy - устаревший формат, значение переведено в текущий и должно быть перезаписано.
	ShapeLegacy
)

// Resolver находит id товара по id или названию.
type Resolver interface {
	ResolveID(idOrTitle string) (string, bool)
}

// DecodeCart разбирает сохраненную корзину. Порядок попыток:
//  1. текущий формат [{"id":..,"qty":..}];
//  2. устаревший массив строк (id или названий): каждая строка - позиция с qty 1,
//     id ищется в каталоге сначала по id, затем по названию, нераспознанная строка
//     остается id как есть; дубликаты не склеиваются;
//  3. иначе - пустая корзина.
func DecodeCart(raw string, resolver Resolver) ([]model.CartItem, Shape) {
	var modern []model.CartItem
	if err := json.Unmarshal([]byte(raw), &modern); err == nil {
		return sanitizeCart(modern), ShapeModern
	}

	var legacy []string
	if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
		items := make([]model.CartItem, 0, len(legacy))
		for _, s := range legacy {
			id, ok := resolver.ResolveID(s)
			if !ok {
				id = s
			}
			items = append(items, model.CartItem{ID: id, Qty: 1})
		}
		return items, ShapeLegacy
	}

	return []model.CartItem{}, ShapeEmpty
}

// DecodeFavorites разбирает сохраненное избранное (массив строк).
// Каждая строка переводится в id товара через каталог (id, затем название),
// нераспознанные строки и повторы отбрасываются. Если итог отличается от
// сохраненного, формат считается устаревшим.
func DecodeFavorites(raw string, resolver Resolver) ([]string, Shape) {
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return []string{}, ShapeEmpty
	}

	ids := make([]string, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	changed := false
	for _, s := range stored {
		id, ok := resolver.ResolveID(s)
		if !ok {
			changed = true
			continue
		}
		if _, dup := seen[id]; dup {
			changed = true
			continue
		}
		if id != s {
			changed = true
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if changed {
		return ids, ShapeLegacy
	}
	return ids, ShapeModern
}

// sanitizeCart отбрасывает позиции без id и поднимает количество до 1.
func sanitizeCart(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if it.Qty < 1 {
			it.Qty = 1
		}
		out = append(out, it)
	}
	return out
}
