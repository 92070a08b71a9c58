package address

import (
	"fmt"
	"shoppingts/internal/model"
	"strings"

	"github.com/google/uuid"
)

// LegacyLabel - подпись адреса, перенесенного из старых полей аккаунта.
const LegacyLabel = "기본 배송지"

var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("shoppingts/address"))

// Normalize возвращает новый список, в котором:
//   - у каждой записи есть id, уникальный в пределах списка;
//   - нет записей с пустым дорожным адресом;
//   - если список не пуст, ровно одна запись помечена как адрес по умолчанию (первая из помеченных,
//     либо первая в списке).
//
// Входной список не изменяется.
func Normalize(list []model.AddressEntry) []model.AddressEntry {
	seen := make(map[string]struct{}, len(list))
	out := make([]model.AddressEntry, 0, len(list))

	for i, entry := range list {
		if _, dup := seen[entry.ID]; entry.ID == "" || dup {
			entry.ID = deriveID(seen, fmt.Sprintf("%d|%s|%s|%s|%s", i, entry.ID, entry.Tag, entry.Road, entry.Detail))
		}
		seen[entry.ID] = struct{}{}

		if strings.TrimSpace(entry.Road) == "" {
			continue
		}
		out = append(out, entry)
	}

	if len(out) == 0 {
		return out
	}

	defaultFound := false
	for i := range out {
		if out[i].IsDefault && !defaultFound {
			defaultFound = true
			continue
		}
		out[i].IsDefault = false
	}
	if !defaultFound {
		out[0].IsDefault = true
	}
	return out
}

// FromLegacy строит адресную книгу из старых полей roadAddress/addressDetail/address.
// Возвращает nil, если дорожного адреса нет.
func FromLegacy(acc model.Account) []model.AddressEntry {
	road := strings.TrimSpace(acc.RoadAddress)
	if road == "" {
		road = strings.TrimSpace(acc.Address)
	}
	if road == "" {
		return nil
	}
	detail := strings.TrimSpace(acc.AddressDetail)

	return []model.AddressEntry{{
		ID:        deriveID(nil, "legacy|"+acc.Username+"|"+road+"|"+detail),
		Tag:       model.TagHome,
		Label:     LegacyLabel,
		Road:      road,
		Detail:    detail,
		IsDefault: true,
	}}
}

// Resolve возвращает нормализованную адресную книгу аккаунта, мигрируя старые поля,
// если список адресов пуст.
func Resolve(acc model.Account) []model.AddressEntry {
	if len(acc.Addresses) == 0 {
		return FromLegacy(acc)
	}
	return Normalize(acc.Addresses)
}

// Primary возвращает адрес по умолчанию.
func Primary(list []model.AddressEntry) (model.AddressEntry, bool) {
	for _, entry := range list {
		if entry.IsDefault {
			return entry, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return model.AddressEntry{}, false
}

// LegacyPatch пересчитывает старые поля аккаунта из адреса по умолчанию,
// чтобы старый код, читающий roadAddress/addressDetail/address, видел актуальные данные.
func LegacyPatch(list []model.AddressEntry) model.AccountPatch {
	var road, detail, full string
	if primary, ok := Primary(list); ok {
		road = primary.Road
		detail = primary.Detail
		full = strings.TrimSpace(primary.Road + " " + primary.Detail)
	}
	return model.AccountPatch{
		Addresses:     list,
		SetAddresses:  true,
		RoadAddress:   &road,
		AddressDetail: &detail,
		Address:       &full,
	}
}

// deriveID детерминированно выводит id из содержимого записи: одна и та же
// ненормализованная запись получает один и тот же id при каждом чтении.
func deriveID(seen map[string]struct{}, name string) string {
	id := uuid.NewSHA1(idSpace, []byte(name)).String()
	if _, taken := seen[id]; taken {
		return uuid.NewString()
	}
	return id
}
