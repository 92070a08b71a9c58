package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"shoppingts/internal/metrics"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Postgres - долговременное хранилище поверх таблицы kv_entries.
// Каждое пространство имен (устройство/профиль браузера) видит только свои ключи.
type Postgres struct {
	db     *sqlx.DB
	tracer trace.Tracer // Для трассировки
}

// Open создает подключение к БД, применяет миграции и возвращает хранилище.
func Open(dbURL, migrationsPath string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	if err := runMigrations(dbURL, migrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	return NewPostgres(db), nil
}

// NewPostgres оборачивает уже открытое подключение (без миграций).
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("postgres-kvstore"),
	}
}

// runMigrations выполняет миграции БД до последней версии.
func runMigrations(dbURL, migrationsPath string) error {
	log.Println("Поиск и применение миграций...")

	// Важно: 'file://' префикс
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр миграции: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("не удалось получить версию миграции: %w", err)
	}

	if dirty {
		log.Printf("БД в 'грязном' состоянии (dirty). Версия: %d. Рекомендуется проверка.", version)
	}

	log.Printf("Миграции успешно применены. Текущая версия БД: %d", version)
	return nil
}

// Namespace возвращает Store, ограниченный одним пространством имен.
func (p *Postgres) Namespace(namespace string) Store {
	return &namespacedStore{pg: p, namespace: namespace}
}

// Close закрывает соединение с БД.
func (p *Postgres) Close() error {
	return p.db.Close()
}

type namespacedStore struct {
	pg        *Postgres
	namespace string
}

func (s *namespacedStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.pg.tracer.Start(ctx, "KV.Get", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	var value string
	err := s.pg.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`, s.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		metrics.DBErrors.WithLabelValues("get").Inc()
		return "", false, fmt.Errorf("не удалось прочитать ключ %q: %w", key, err)
	}
	return value, true, nil
}

func (s *namespacedStore) Set(ctx context.Context, key, value string) error {
	ctx, span := s.pg.tracer.Start(ctx, "KV.Set", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	query := `INSERT INTO kv_entries (namespace, key, value, updated_at) VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.pg.db.ExecContext(ctx, query, s.namespace, key, value); err != nil {
		metrics.DBErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("не удалось записать ключ %q: %w", key, err)
	}
	return nil
}

func (s *namespacedStore) Remove(ctx context.Context, key string) error {
	ctx, span := s.pg.tracer.Start(ctx, "KV.Remove", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	if _, err := s.pg.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`, s.namespace, key); err != nil {
		metrics.DBErrors.WithLabelValues("remove").Inc()
		return fmt.Errorf("не удалось удалить ключ %q: %w", key, err)
	}
	return nil
}
