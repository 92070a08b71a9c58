package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"shoppingts/internal/address"
	"shoppingts/internal/cache"
	"shoppingts/internal/metrics"
	"shoppingts/internal/model"
	"shoppingts/internal/storage"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// UsersKey - ключ списка аккаунтов в долговременном хранилище.
const UsersKey = "shoppingts-info-users"

// Repository - CRUD над списком аккаунтов, который хранится одним JSON-массивом.
// Чтения кэшируются на короткое время, любая запись синхронно сбрасывает кэш.
type Repository struct {
	store    storage.Checked
	cache    cache.Cache
	cacheKey string
	tracer   trace.Tracer // Для трассировки
}

// NewRepository создает репозиторий поверх долговременного хранилища устройства.
// namespace отделяет записи кэша разных устройств.
func NewRepository(durable storage.Checked, c cache.Cache, namespace string) *Repository {
	return &Repository{
		store:    durable,
		cache:    c,
		cacheKey: "accounts:" + namespace,
		tracer:   otel.Tracer("account-repository"),
	}
}

// ErrUnavailable - список аккаунтов не удалось прочитать или записать.
// Писать поверх непрочитанного списка нельзя: это стерло бы остальные аккаунты.
var ErrUnavailable = errors.New("хранилище аккаунтов недоступно")

// LoadAll читает и нормализует все аккаунты. Битые записи молча отбрасываются.
// При сбое хранилища возвращает пустой список; для записи используйте load.
func (r *Repository) LoadAll(ctx context.Context) []model.Account {
	list, err := r.load(ctx)
	if err != nil {
		return []model.Account{}
	}
	return list
}

func (r *Repository) load(ctx context.Context) ([]model.Account, error) {
	ctx, span := r.tracer.Start(ctx, "Accounts.LoadAll")
	defer span.End()

	if cached, ok := r.cache.Get(ctx, r.cacheKey); ok {
		if list, ok := cached.([]model.Account); ok {
			metrics.CacheHits.Inc()
			return cloneAll(list), nil
		}
	}
	metrics.CacheMisses.Inc()

	raw, found, err := r.store.Read(ctx, UsersKey)
	if err != nil {
		// Сбой не кэшируем, иначе пустой список переживет восстановление хранилища
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	list := []model.Account{}
	if found {
		list = decodeAccounts(raw)
	}

	r.cache.Set(ctx, r.cacheKey, list)
	return cloneAll(list), nil
}

// SaveAll перезаписывает весь список и сбрасывает кэш.
func (r *Repository) SaveAll(ctx context.Context, list []model.Account) error {
	ctx, span := r.tracer.Start(ctx, "Accounts.SaveAll")
	defer span.End()

	if list == nil {
		list = []model.Account{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		log.Printf("Не удалось сериализовать аккаунты: %v", err)
		return err
	}

	defer r.cache.Delete(ctx, r.cacheKey)
	if err := r.store.Write(ctx, UsersKey, string(data)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// FindByUsername ищет аккаунт по логину без учета регистра.
func (r *Repository) FindByUsername(ctx context.Context, username string) (model.Account, bool) {
	return find(r.LoadAll(ctx), func(acc model.Account) bool {
		return strings.EqualFold(acc.Username, username)
	})
}

// FindByEmail ищет аккаунт по email без учета регистра.
func (r *Repository) FindByEmail(ctx context.Context, email string) (model.Account, bool) {
	return find(r.LoadAll(ctx), func(acc model.Account) bool {
		return strings.EqualFold(acc.Email, email)
	})
}

// IsUsernameTaken при сбое чтения возвращает ошибку, а не "свободно".
func (r *Repository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	list, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := find(list, func(acc model.Account) bool {
		return strings.EqualFold(acc.Username, username)
	})
	return ok, nil
}

func (r *Repository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	list, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := find(list, func(acc model.Account) bool {
		return strings.EqualFold(acc.Email, email)
	})
	return ok, nil
}

// Update накладывает patch на аккаунт и сохраняет весь список.
// Возвращает false, если аккаунта нет или хранилище недоступно.
func (r *Repository) Update(ctx context.Context, username string, patch model.AccountPatch) bool {
	list, err := r.load(ctx)
	if err != nil {
		return false
	}
	for i := range list {
		if strings.EqualFold(list[i].Username, username) {
			list[i] = patch.Apply(list[i])
			return r.SaveAll(ctx, list) == nil
		}
	}
	return false
}

// Create добавляет аккаунт в конец списка. Проверки уникальности - на вызывающей стороне.
func (r *Repository) Create(ctx context.Context, acc model.Account) error {
	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.SaveAll(ctx, append(list, acc))
}

func find(list []model.Account, match func(model.Account) bool) (model.Account, bool) {
	for _, acc := range list {
		if match(acc) {
			return acc, true
		}
	}
	return model.Account{}, false
}

// decodeAccounts разбирает сохраненный JSON. Не массив - пустой список;
// элементы без строковых username/email/password пропускаются.
func decodeAccounts(raw string) []model.Account {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("Список аккаунтов поврежден, считаем его пустым: %v", err)
		return []model.Account{}
	}

	out := make([]model.Account, 0, len(items))
	for _, item := range items {
		if acc, ok := decodeAccount(item); ok {
			out = append(out, acc)
		}
	}
	return out
}

func decodeAccount(raw json.RawMessage) (model.Account, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.Account{}, false
	}

	username, okU := stringField(fields, "username")
	email, okE := stringField(fields, "email")
	password, okP := stringField(fields, "password")
	if !okU || !okE || !okP {
		return model.Account{}, false
	}

	acc := model.Account{
		Username: username,
		Email:    email,
		Password: password,
	}
	acc.Name, _ = stringField(fields, "name")
	if strings.TrimSpace(acc.Name) == "" {
		acc.Name = username
	}
	acc.Phone, _ = stringField(fields, "phone")
	acc.Address, _ = stringField(fields, "address")
	acc.RoadAddress, _ = stringField(fields, "roadAddress")
	acc.AddressDetail, _ = stringField(fields, "addressDetail")
	acc.ProfileImage, _ = stringField(fields, "profileImage")
	acc.Addresses = decodeAddresses(fields["addresses"])

	before := len(acc.Addresses)
	acc.Addresses = address.Resolve(acc)
	if before == 0 && len(acc.Addresses) > 0 {
		metrics.LegacyMigrations.WithLabelValues("address").Inc()
	}
	return acc, true
}

// decodeAddresses разбирает адреса поэлементно: одна битая запись не роняет остальные.
func decodeAddresses(raw json.RawMessage) []model.AddressEntry {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]model.AddressEntry, 0, len(items))
	for _, item := range items {
		var entry model.AddressEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func cloneAll(list []model.Account) []model.Account {
	out := make([]model.Account, len(list))
	for i, acc := range list {
		acc.Addresses = append([]model.AddressEntry(nil), acc.Addresses...)
		out[i] = acc
	}
	return out
}
