package model

// CartItem - позиция корзины. Qty всегда >= 1.
type CartItem struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

// TotalQty возвращает суммарное количество товаров (для бейджа корзины).
func TotalQty(items []CartItem) int {
	total := 0
	for _, it := range items {
		total += it.Qty
	}
	return total
}
