package address

import (
	"context"
	"shoppingts/internal/model"
	"shoppingts/internal/validator"
	"strings"

	"github.com/google/uuid"
)

// AccountStore - то, что адресной книге нужно от репозитория аккаунтов.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (model.Account, bool)
	Update(ctx context.Context, username string, patch model.AccountPatch) bool
}

// Book - адресная книга одного аккаунта. Каждая операция читает весь список,
// нормализует его и записывает целиком.
type Book struct {
	accounts AccountStore
}

func NewBook(accounts AccountStore) *Book {
	return &Book{accounts: accounts}
}

// NewEntry собирает запись из полей формы редактора.
// Для тега "other" в Tag и Label попадает пользовательская подпись.
func NewEntry(tag, customLabel, road, detail string, isDefault bool) model.AddressEntry {
	if tag == "" {
		tag = model.TagHome
	}

	var label string
	switch {
	case tag == model.TagOther:
		label = strings.TrimSpace(customLabel)
		if label == "" {
			label = "사용자 지정"
		}
		tag = label
	case model.TagLabels[tag] != "":
		label = model.TagLabels[tag]
	default:
		label = "배송지"
	}

	return model.AddressEntry{
		Tag:       tag,
		Label:     label,
		Road:      strings.TrimSpace(road),
		Detail:    strings.TrimSpace(detail),
		IsDefault: isDefault,
	}
}

// List возвращает нормализованную адресную книгу (со старыми полями, перенесенными в список).
func (b *Book) List(ctx context.Context, username string) ([]model.AddressEntry, bool) {
	acc, ok := b.accounts.FindByUsername(ctx, username)
	if !ok {
		return nil, false
	}
	return Resolve(acc), true
}

// SetDefault делает адрес id адресом по умолчанию.
func (b *Book) SetDefault(ctx context.Context, username, id string) ([]model.AddressEntry, validator.Result) {
	list, ok := b.List(ctx, username)
	if !ok {
		return nil, validator.Fail("계정을 찾을 수 없습니다.")
	}

	next := make([]model.AddressEntry, len(list))
	for i, entry := range list {
		entry.IsDefault = entry.ID == id
		next[i] = entry
	}
	return b.persist(ctx, username, next, "기본 배송지가 변경되었습니다.")
}

// Upsert заменяет запись с тем же id или добавляет новую в конец.
// Пустой id означает новую запись.
func (b *Book) Upsert(ctx context.Context, username string, entry model.AddressEntry) ([]model.AddressEntry, validator.Result) {
	if strings.TrimSpace(entry.Road) == "" {
		return nil, validator.Fail("도로명 주소를 선택하거나 입력해주세요.")
	}

	list, ok := b.List(ctx, username)
	if !ok {
		return nil, validator.Fail("계정을 찾을 수 없습니다.")
	}

	message := "배송지가 추가되었습니다."
	next := append([]model.AddressEntry(nil), list...)

	replaced := false
	if entry.ID != "" {
		for i := range next {
			if next[i].ID == entry.ID {
				next[i] = entry
				replaced = true
				message = "배송지가 수정되었습니다."
				break
			}
		}
	}
	if !replaced {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		next = append(next, entry)
	}
	return b.persist(ctx, username, next, message)
}

// Delete удаляет запись по id. Если удален адрес по умолчанию, им становится первый оставшийся.
func (b *Book) Delete(ctx context.Context, username, id string) ([]model.AddressEntry, validator.Result) {
	list, ok := b.List(ctx, username)
	if !ok {
		return nil, validator.Fail("계정을 찾을 수 없습니다.")
	}

	next := make([]model.AddressEntry, 0, len(list))
	for _, entry := range list {
		if entry.ID != id {
			next = append(next, entry)
		}
	}
	return b.persist(ctx, username, next, "배송지가 삭제되었습니다.")
}

func (b *Book) persist(ctx context.Context, username string, list []model.AddressEntry, message string) ([]model.AddressEntry, validator.Result) {
	normalized := Normalize(list)
	if !b.accounts.Update(ctx, username, LegacyPatch(normalized)) {
		return nil, validator.Fail("저장 중 오류가 발생했습니다.")
	}
	return normalized, validator.Pass(message)
}
