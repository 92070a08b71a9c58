package generator

import (
	"fmt"
	"shoppingts/internal/catalog"
	"shoppingts/internal/model"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Categories - разделы витрины.
var Categories = []string{
	"tv-audio",
	"laptop",
	"mobile",
	"pc",
	"gaming",
	"home",
	"kitchen",
	"accessory",
	"deal",
}

var thumbs = []string{"📺", "💻", "📱", "🖥️", "🎮", "🏠", "🍳", "🎧", "🏷️"}

// NewProduct создает один случайный товар с id вида p001.
func NewProduct(n int) model.Product {
	idx := gofakeit.Number(0, len(Categories)-1)

	// Цена кратна 100 вон, как на настоящей витрине
	price := gofakeit.Number(50, 30000) * 100

	return model.Product{
		ID:         fmt.Sprintf("p%03d", n),
		Title:      gofakeit.ProductName(),
		Price:      catalog.FormatPrice(price),
		Desc:       gofakeit.ProductDescription(),
		Thumb:      thumbs[idx],
		Category:   Categories[idx],
		Popularity: gofakeit.Number(0, 1000),
		CreatedAt:  time.Now().AddDate(0, 0, -gofakeit.Number(0, 365)).Format("2006-01-02"),
	}
}

// NewCatalog создает n товаров с последовательными id и уникальными названиями.
// Уникальность названий нужна, так как устаревшие корзины ссылаются на товары по названию.
func NewCatalog(n int) []model.Product {
	// Инициализируем gofakeit, если это еще не сделано (на всякий случай)
	gofakeit.Seed(0)

	products := make([]model.Product, 0, n)
	seen := make(map[string]struct{}, n)
	for i := 1; len(products) < n; i++ {
		p := NewProduct(len(products) + 1)
		if _, dup := seen[p.Title]; dup {
			p.Title = fmt.Sprintf("%s %d", p.Title, i)
		}
		seen[p.Title] = struct{}{}
		products = append(products, p)
	}
	return products
}

// NewCart возвращает корзину из случайных товаров каталога без повторов id.
func NewCart(products []model.Product, lines int) []model.CartItem {
	if lines > len(products) {
		lines = len(products)
	}
	order := indexes(len(products))
	gofakeit.ShuffleInts(order)

	items := make([]model.CartItem, 0, lines)
	for _, i := range order[:lines] {
		items = append(items, model.CartItem{ID: products[i].ID, Qty: gofakeit.Number(1, 4)})
	}
	return items
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
