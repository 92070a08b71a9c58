package model

// Account - учетная запись покупателя в том виде, в котором она хранится
// в долговременном хранилище (JSON-массив аккаунтов).
type Account struct {
	Username      string         `json:"username" validate:"required,shop_username"`
	Name          string         `json:"name" validate:"required,shop_name"`
	Email         string         `json:"email" validate:"required,shop_email"`
	Password      string         `json:"password" validate:"required,shop_password"`
	Phone         string         `json:"phone" validate:"omitempty,shop_phone"`
	Address       string         `json:"address"`
	RoadAddress   string         `json:"roadAddress,omitempty"`
	AddressDetail string         `json:"addressDetail,omitempty"`
	Addresses     []AddressEntry `json:"addresses,omitempty" validate:"omitempty,dive"`
	ProfileImage  string         `json:"profileImage,omitempty"`
}

// AccountPatch - частичное обновление аккаунта. nil-поля не трогаются.
type AccountPatch struct {
	Name          *string
	Email         *string
	Password      *string
	Phone         *string
	Address       *string
	RoadAddress   *string
	AddressDetail *string
	Addresses     []AddressEntry
	SetAddresses  bool // Addresses применяется только при SetAddresses (пустой список тоже валиден)
	ProfileImage  *string
}

// Apply накладывает патч поверх аккаунта (shallow merge) и возвращает результат.
func (p AccountPatch) Apply(a Account) Account {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Password != nil {
		a.Password = *p.Password
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Address != nil {
		a.Address = *p.Address
	}
	if p.RoadAddress != nil {
		a.RoadAddress = *p.RoadAddress
	}
	if p.AddressDetail != nil {
		a.AddressDetail = *p.AddressDetail
	}
	if p.SetAddresses {
		a.Addresses = append([]AddressEntry(nil), p.Addresses...)
	}
	if p.ProfileImage != nil {
		a.ProfileImage = *p.ProfileImage
	}
	return a
}

// StringPtr - хелпер для сборки патчей.
func StringPtr(s string) *string { return &s }
