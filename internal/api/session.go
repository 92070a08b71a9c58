package api

import (
	"net/http"
	"shoppingts/internal/account"
	"shoppingts/internal/model"
)

type sessionView struct {
	SessionID      string `json:"sessionId"`
	Authenticated  bool   `json:"authenticated"`
	Username       string `json:"username,omitempty"`
	CartCount      int    `json:"cartCount"`
	FavoritesCount int    `json:"favoritesCount"`
}

// profileView - аккаунт без пароля.
type profileView struct {
	Username     string               `json:"username"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Phone        string               `json:"phone,omitempty"`
	Address      string               `json:"address,omitempty"`
	Addresses    []model.AddressEntry `json:"addresses"`
	ProfileImage string               `json:"profileImage,omitempty"`
}

func toProfile(acc model.Account, addresses []model.AddressEntry) profileView {
	if addresses == nil {
		addresses = []model.AddressEntry{}
	}
	return profileView{
		Username:     acc.Username,
		Name:         acc.Name,
		Email:        acc.Email,
		Phone:        acc.Phone,
		Address:      acc.Address,
		Addresses:    addresses,
		ProfileImage: acc.ProfileImage,
	}
}

func (h *ShopHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	ctx := r.Context()

	view := sessionView{
		SessionID:      c.tabID,
		CartCount:      model.TotalQty(c.Cart.Cart(ctx)),
		FavoritesCount: len(c.Cart.Favorites(ctx)),
	}
	if acc, ok := c.CurrentAccount(ctx); ok {
		view.Authenticated = true
		view.Username = acc.Username
	}
	respondWithJSON(w, http.StatusOK, view)
}

// CloseSession удаляет хранилище вкладки: гостевая корзина и вход пропадают.
func (h *ShopHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	h.hub.CloseTab(r.Context(), c.deviceID, c.tabID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShopHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var form account.SignupForm
	if !decodeBody(w, r, &form) {
		return
	}
	respondWithResult(w, clientFrom(r).Signup(r.Context(), form), nil)
}

func (h *ShopHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	res := clientFrom(r).Accounts.CheckUsername(r.Context(), r.URL.Query().Get("value"))
	respondWithResult(w, res, nil)
}

func (h *ShopHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	res := clientFrom(r).Accounts.CheckEmail(r.Context(), r.URL.Query().Get("value"))
	respondWithResult(w, res, nil)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *ShopHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decodeBody(w, r, &body) {
		return
	}
	result := clientFrom(r).Login(r.Context(), body.Username, body.Password)
	respondWithResult(w, result.Result, result)
}

func (h *ShopHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientFrom(r).Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShopHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	acc, ok := c.CurrentAccount(r.Context())
	if !ok {
		http.Error(w, "Требуется вход", http.StatusUnauthorized)
		return
	}
	addresses, _ := c.ListAddresses(r.Context())
	respondWithJSON(w, http.StatusOK, toProfile(acc, addresses))
}

type contactBody struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *ShopHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var body contactBody
	if !decodeBody(w, r, &body) {
		return
	}
	respondWithResult(w, clientFrom(r).UpdateContact(r.Context(), body.Email, body.Phone), nil)
}

type imageBody struct {
	Image string `json:"image"`
}

func (h *ShopHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	var body imageBody
	if !decodeBody(w, r, &body) {
		return
	}
	respondWithResult(w, clientFrom(r).UpdateProfileImage(r.Context(), body.Image), nil)
}

type passwordBody struct {
	Current string `json:"current"`
	Next    string `json:"next"`
	Confirm string `json:"confirm"`
}

func (h *ShopHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body passwordBody
	if !decodeBody(w, r, &body) {
		return
	}
	respondWithResult(w, clientFrom(r).ChangePassword(r.Context(), body.Current, body.Next, body.Confirm), nil)
}

type recoveryBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (h *ShopHandler) FindUsername(w http.ResponseWriter, r *http.Request) {
	var body recoveryBody
	if !decodeBody(w, r, &body) {
		return
	}
	username, res := clientFrom(r).Accounts.FindUsername(r.Context(), body.Email)
	var data interface{}
	if res.OK {
		data = map[string]string{"username": username}
	}
	respondWithResult(w, res, data)
}

func (h *ShopHandler) VerifyRecovery(w http.ResponseWriter, r *http.Request) {
	var body recoveryBody
	if !decodeBody(w, r, &body) {
		return
	}
	respondWithResult(w, clientFrom(r).Accounts.VerifyRecovery(r.Context(), body.Username, body.Email), nil)
}

func (h *ShopHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body recoveryBody
	if !decodeBody(w, r, &body) {
		return
	}
	res := clientFrom(r).Accounts.ResetPassword(r.Context(), body.Username, body.Email, body.Password, body.Confirm)
	respondWithResult(w, res, nil)
}
