package model

// Product - запись статического каталога товаров.
// Цена хранится строкой с символом валюты и разделителями ("₩1,290,000").
type Product struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	Desc       string `json:"desc"`
	Thumb      string `json:"thumb,omitempty"`
	Category   string `json:"category,omitempty"`
	Popularity int    `json:"popularity,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}
