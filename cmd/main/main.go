package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"shoppingts/internal/api"
	"shoppingts/internal/cache"
	"shoppingts/internal/catalog"
	"shoppingts/internal/config"
	"shoppingts/internal/juso"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/metrics"
	"shoppingts/internal/notify"
	"shoppingts/internal/storefront"
	"shoppingts/internal/tracing"
	"syscall"
	"time"
)

func main() {
	cfg := config.Get()
	metrics.Init()

	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing)
		if err != nil {
			log.Fatalf("Ошибка инициализации трассировки: %v", err)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Printf("Ошибка остановки трассировки: %v", err)
			}
		}()
	}

	// Каталог товаров (только чтение)
	products, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Ошибка загрузки каталога: %v", err)
	}

	// Долговременное хранилище устройств
	var devices storefront.DurableProvider
	switch cfg.Storage.Backend {
	case "memory":
		log.Println("Долговременное хранилище: память процесса")
		devices = storefront.MemoryDevices()
	case "postgres":
		db, err := kvstore.Open(cfg.Storage.PostgresURL, cfg.Storage.MigrationsPath)
		if err != nil {
			log.Fatalf("Ошибка инициализации хранилища: %v", err)
		}
		defer db.Close()
		devices = storefront.PostgresDevices(db)
	default:
		log.Fatalf("Неизвестный STORAGE_BACKEND: %q", cfg.Storage.Backend)
	}

	// Кэш аккаунтов
	accountCache := cache.NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL)

	// Уведомления: лог и, при включенной Kafka, топик событий
	notifiers := notify.Multi{notify.LogNotifier{}}
	if cfg.Kafka.Enabled {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka)
		defer kafkaNotifier.Close()
		notifiers = append(notifiers, kafkaNotifier)
	}

	// Поиск адресов работает только с ключом API
	var lookup storefront.AddressLookup
	if cfg.Juso.Key != "" {
		lookup = juso.New(cfg.Juso.URL, cfg.Juso.Key)
	} else {
		log.Println("JUSO_API_KEY не задан, поиск адресов отключен")
	}

	// Хранилища вкладок освобождаются после простоя
	tabs := cache.NewLRUCache(cfg.Session.MaxTabs, cfg.Session.TabTTL)

	hub := storefront.NewHub(devices, accountCache, tabs, products, notifiers, lookup)

	// Запуск HTTP-сервера
	server := api.NewServer(cfg.HTTP.Port, hub)
	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Ошибка запуска HTTP-сервера: %v", err)
		}
	}()

	// Ожидание сигнала для корректного завершения работы
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Println("Сервис останавливается...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Ошибка остановки HTTP-сервера: %v", err)
	}
	log.Println("Сервис успешно остановлен.")
}
