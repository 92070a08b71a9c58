package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"shoppingts/internal/generator"
)

// Генератор тестового каталога. Пример:
//
//	go run ./cmd/catalog -n 50 -out ./data/generated.json
//	go run ./cmd/catalog -n 20 -cart 3   # дополнительно печатает случайную корзину
func main() {
	count := flag.Int("n", 30, "количество товаров")
	out := flag.String("out", "", "файл для записи каталога (по умолчанию stdout)")
	cartLines := flag.Int("cart", 0, "напечатать корзину из N случайных позиций")
	flag.Parse()

	products := generator.NewCatalog(*count)
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		log.Fatalf("Ошибка сериализации каталога: %v", err)
	}

	if *out == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("Ошибка записи файла каталога: %v", err)
		}
		log.Printf("Каталог из %d товаров записан в %s", len(products), *out)
	}

	if *cartLines > 0 {
		cart, err := json.Marshal(generator.NewCart(products, *cartLines))
		if err != nil {
			log.Fatalf("Ошибка сериализации корзины: %v", err)
		}
		fmt.Fprintln(os.Stderr, string(cart))
	}
}
