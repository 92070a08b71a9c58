package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"shoppingts/internal/model"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Режимы сортировки витрины.
const (
	SortPopular   = "popular"
	SortNew       = "new"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// Catalog - неизменяемый справочник товаров.
type Catalog struct {
	products []model.Product
	byID     map[string]model.Product
	byTitle  map[string]model.Product
}

// New строит справочник. При повторе id или названия побеждает первая запись.
func New(products []model.Product) *Catalog {
	c := &Catalog{
		products: append([]model.Product(nil), products...),
		byID:     make(map[string]model.Product, len(products)),
		byTitle:  make(map[string]model.Product, len(products)),
	}
	for _, p := range products {
		if _, ok := c.byID[p.ID]; p.ID != "" && !ok {
			c.byID[p.ID] = p
		}
		if _, ok := c.byTitle[p.Title]; p.Title != "" && !ok {
			c.byTitle[p.Title] = p
		}
	}
	return c
}

// Load читает каталог из JSON-файла (массив товаров).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать каталог %s: %w", path, err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("не удалось разобрать каталог %s: %w", path, err)
	}

	log.Printf("Каталог загружен: %d товаров", len(products))
	return New(products), nil
}

// All возвращает копию списка товаров в исходном порядке.
func (c *Catalog) All() []model.Product {
	return append([]model.Product(nil), c.products...)
}

func (c *Catalog) ByID(id string) (model.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Resolve ищет товар сначала по id, затем по точному названию.
func (c *Catalog) Resolve(idOrTitle string) (model.Product, bool) {
	if p, ok := c.byID[idOrTitle]; ok {
		return p, true
	}
	p, ok := c.byTitle[idOrTitle]
	return p, ok
}

// ResolveID возвращает id товара по id или названию. Товар без id
// идентифицируется своим названием.
func (c *Catalog) ResolveID(idOrTitle string) (string, bool) {
	p, ok := c.Resolve(idOrTitle)
	if !ok {
		return "", false
	}
	if p.ID == "" {
		return p.Title, true
	}
	return p.ID, true
}

// Title возвращает название товара или сам id, если товар неизвестен.
func (c *Catalog) Title(id string) string {
	if p, ok := c.Resolve(id); ok {
		return p.Title
	}
	return id
}

// Price возвращает цену товара в вонах, 0 для неизвестного товара.
func (c *Catalog) Price(id string) int {
	if p, ok := c.Resolve(id); ok {
		return ParsePrice(p.Price)
	}
	return 0
}

// Filter возвращает товары категории. Пустая категория - все товары.
func (c *Catalog) Filter(category string) []model.Product {
	if category == "" {
		return c.All()
	}
	out := make([]model.Product, 0)
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Sort возвращает отсортированную копию. Неизвестный режим оставляет исходный порядок.
func Sort(list []model.Product, mode string) []model.Product {
	items := append([]model.Product(nil), list...)

	switch mode {
	case "", SortPopular:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Popularity > items[j].Popularity })
	case SortNew:
		sort.SliceStable(items, func(i, j int) bool { return createdAt(items[i]).After(createdAt(items[j])) })
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return ParsePrice(items[i].Price) < ParsePrice(items[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return ParsePrice(items[i].Price) > ParsePrice(items[j].Price) })
	}
	return items
}

// ParsePrice выбрасывает все нецифровые символы и разбирает остаток.
// Пустая или неразбираемая цена - 0.
func ParsePrice(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// FormatPrice форматирует цену как "₩1,290,000".
func FormatPrice(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "₩" + b.String()
}

func createdAt(p model.Product) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, p.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}
