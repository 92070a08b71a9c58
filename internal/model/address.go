package model

// Теги адресов доставки. Для TagOther в Tag хранится произвольная метка пользователя.
const (
	TagHome   = "home"
	TagWork   = "work"
	TagFriend = "friend"
	TagOther  = "other"
)

// TagLabels - подписи тегов для интерфейса.
var TagLabels = map[string]string{
	TagHome:   "집",
	TagWork:   "회사",
	TagFriend: "친구집",
	TagOther:  "직접 입력",
}

// AddressEntry - адрес доставки из адресной книги аккаунта.
type AddressEntry struct {
	ID        string `json:"id"`
	Tag       string `json:"tag"`
	Label     string `json:"label"`
	Road      string `json:"road" validate:"required"`
	Detail    string `json:"detail,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// FullAddress склеивает дорожный и детальный адрес.
func (a AddressEntry) FullAddress() string {
	if a.Detail == "" {
		return a.Road
	}
	return a.Road + " " + a.Detail
}
