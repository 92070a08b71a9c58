package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal - Счетчик HTTP-запросов
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Количество HTTP запросов",
		},
		[]string{"handler", "status"}, // Метки: хэндлер и http-статус
	)

	// HttpRequestDuration - Гистограмма длительности HTTP-запросов
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Длительность HTTP запросов",
		},
		[]string{"handler"},
	)

	// CacheHits - Счетчик попаданий в кэш аккаунтов
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Количество попаданий в кэш",
		},
	)

	// CacheMisses - Счетчик промахов кэша
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Количество промахов кэша",
		},
	)

	// CacheSize - Датчик (Gauge) текущего размера кэша
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size_items",
			Help: "Текущий размер кэша в элементах",
		},
	)

	// CacheEvictions - Счетчик вытеснений из кэша (LRU и истечение TTL)
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Количество вытесненных из кэша элементов",
		},
	)

	// DBErrors - Счетчик ошибок базы данных
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Количество ошибок при работе с БД",
		},
		[]string{"operation"}, // Метки: "get", "set", "remove"
	)

	// StorageDegraded - Сколько раз политика хранения проглотила ошибку хранилища
	StorageDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_degraded_total",
			Help: "Количество операций хранилища, деградировавших до not-found/no-op",
		},
		[]string{"operation"},
	)

	// LegacyMigrations - Счетчик миграций устаревших форматов корзины/избранного/аккаунтов
	LegacyMigrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legacy_migrations_total",
			Help: "Количество миграций устаревших форматов данных",
		},
		[]string{"kind"}, // Метки: "cart", "favorites", "address"
	)

	// SessionMerges - Счетчик слияний гостевой сессии при входе
	SessionMerges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_merges_total",
			Help: "Количество слияний гостевой корзины и избранного при входе",
		},
	)

	// OrdersPlaced - Счетчик оформленных заказов
	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Количество оформленных заказов",
		},
		[]string{"ledger"}, // Метки: "user", "guest"
	)

	// KafkaMessagesProcessed - Счетчик обработанных Kafka-сообщений
	KafkaMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Количество обработанных сообщений Kafka",
		},
		[]string{"status"}, // Метки: "success", "dlq_validation", "dlq_handler_error", "dlq_failed_write"
	)

	// NotificationsPublished - Счетчик событий, отправленных в Kafka
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Количество отправленных уведомлений",
		},
		[]string{"status"}, // Метки: "success", "failed"
	)
)

// Init используется для регистрации метрик.
// promauto регистрирует их автоматически при создании.
func Init() {
	log.Println("Prometheus метрики инициализированы.")
}
