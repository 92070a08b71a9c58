package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"shoppingts/internal/account"
	"shoppingts/internal/address"
	"shoppingts/internal/cache"
	"shoppingts/internal/cart"
	"shoppingts/internal/catalog"
	"shoppingts/internal/juso"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/merge"
	"shoppingts/internal/model"
	"shoppingts/internal/notify"
	"shoppingts/internal/orders"
	"shoppingts/internal/storage"
	"shoppingts/internal/validator"
)

// LastOrderKey - id последнего заказа вкладки.
const LastOrderKey = "lastOrderId"

// AddressLookup ищет дорожные адреса по ключевому слову.
type AddressLookup interface {
	Search(ctx context.Context, keyword string) ([]juso.Address, error)
}

// Deps - зависимости одной вкладки одного устройства.
type Deps struct {
	DeviceID string
	Durable  kvstore.Store // хранилище устройства
	Tab      kvstore.Store // хранилище вкладки
	Cache    cache.Cache
	Catalog  *catalog.Catalog
	Notifier notify.Notifier
	Lookup   AddressLookup // nil - поиск адресов отключен
}

// Client - одна вкладка магазина: связывает политику хранения, аккаунты,
// адресную книгу, корзину, журнал заказов и слияние сессии.
type Client struct {
	Session   *storage.Session
	Policy    *storage.Policy
	Accounts  *account.Service
	Addresses *address.Book
	Cart      *cart.Store
	Orders    *orders.Ledger
	Merge     *merge.Engine

	repo     *account.Repository
	catalog  *catalog.Catalog
	notifier notify.Notifier
	lookup   AddressLookup
}

// LoginResult - результат входа и итог слияния гостевой сессии.
type LoginResult struct {
	validator.Result
	Merge        merge.Summary `json:"merge"`
	MergeMessage string        `json:"mergeMessage,omitempty"`
}

// CartView - корзина, соединенная с каталогом.
type CartView struct {
	Lines      []cart.Line `json:"lines"`
	Count      int         `json:"count"`
	Total      int         `json:"total"`
	TotalLabel string      `json:"totalLabel"`
}

func New(d Deps) *Client {
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if d.DeviceID != "" {
		notifier = notify.ForDevice(notifier, d.DeviceID)
	}

	session := storage.NewSession(d.Tab)
	policy := storage.NewPolicy(d.Durable, d.Tab, session)
	repo := account.NewRepository(policy.Durable(), d.Cache, d.DeviceID)
	store := cart.NewStore(policy, d.Catalog, notifier)

	return &Client{
		Session:   session,
		Policy:    policy,
		Accounts:  account.NewService(repo),
		Addresses: address.NewBook(repo),
		Cart:      store,
		Orders:    orders.NewLedger(policy, session, store),
		Merge:     merge.NewEngine(policy, d.Catalog, notifier),
		repo:      repo,
		catalog:   d.Catalog,
		notifier:  notifier,
		lookup:    d.Lookup,
	}
}

func (c *Client) toast(ctx context.Context, format string, args ...any) {
	c.notifier.Notify(ctx, notify.Toast(fmt.Sprintf(format, args...)))
}

func notLoggedIn() validator.Result {
	return validator.Fail("로그인 상태가 아닙니다.")
}

// Login проверяет логин и пароль, открывает сессию вкладки и один раз
// сливает гостевые корзину и избранное в данные пользователя.
func (c *Client) Login(ctx context.Context, username, password string) LoginResult {
	acc, res := c.Accounts.Authenticate(ctx, username, password)
	if !res.OK {
		return LoginResult{Result: res}
	}

	c.Session.SignIn(ctx, acc.Username)
	summary := c.Merge.Merge(ctx)

	result := LoginResult{Result: res, Merge: summary, MergeMessage: summary.Message(c.catalog)}
	if result.MergeMessage != "" {
		c.toast(ctx, "%s", result.MergeMessage)
	}
	log.Printf("Вход пользователя %s", acc.Username)
	return result
}

// Logout закрывает сессию вкладки и удаляет долговременные корзину и избранное устройства.
func (c *Client) Logout(ctx context.Context) {
	username := c.Session.Username(ctx)
	c.Session.SignOut(ctx)
	c.Policy.Durable().Remove(ctx, cart.CartKey)
	c.Policy.Durable().Remove(ctx, cart.FavoritesKey)

	c.notifier.Notify(ctx, notify.CartChanged(model.TotalQty(c.Cart.Cart(ctx))))
	c.notifier.Notify(ctx, notify.FavoritesChanged(len(c.Cart.Favorites(ctx))))
	if username != "" {
		log.Printf("Выход пользователя %s", username)
	}
}

// CurrentAccount возвращает аккаунт вошедшего пользователя. Если аккаунт
// пропал из списка, сессия вкладки закрывается.
func (c *Client) CurrentAccount(ctx context.Context) (model.Account, bool) {
	username := c.Session.Username(ctx)
	if username == "" {
		return model.Account{}, false
	}
	acc, ok := c.repo.FindByUsername(ctx, username)
	if !ok {
		c.Session.SignOut(ctx)
		return model.Account{}, false
	}
	return acc, true
}

func (c *Client) Signup(ctx context.Context, form account.SignupForm) validator.Result {
	return c.Accounts.Signup(ctx, form)
}

// ChangePassword меняет пароль и после успеха принудительно завершает сессию.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) validator.Result {
	res := c.Accounts.ChangePassword(ctx, c.Session.Username(ctx), current, next, confirm)
	if !res.OK {
		return res
	}

	c.toast(ctx, "비밀번호가 변경되었습니다. 곧 자동 로그아웃됩니다.")
	c.Logout(ctx)
	c.toast(ctx, "로그아웃되어 로컬 데이터가 삭제되었습니다.")
	return validator.Pass("비밀번호가 변경되어 보안을 위해 자동으로 로그아웃됩니다. 다시 로그인해주세요.")
}

func (c *Client) UpdateContact(ctx context.Context, email, phone string) validator.Result {
	username := c.Session.Username(ctx)
	if username == "" {
		return notLoggedIn()
	}
	return c.Accounts.UpdateContact(ctx, username, email, phone)
}

func (c *Client) UpdateProfileImage(ctx context.Context, dataURI string) validator.Result {
	username := c.Session.Username(ctx)
	if username == "" {
		return notLoggedIn()
	}
	return c.Accounts.UpdateProfileImage(ctx, username, dataURI)
}

func (c *Client) ListAddresses(ctx context.Context) ([]model.AddressEntry, validator.Result) {
	username := c.Session.Username(ctx)
	if username == "" {
		return nil, notLoggedIn()
	}
	list, ok := c.Addresses.List(ctx, username)
	if !ok {
		return nil, validator.Fail("계정을 찾을 수 없습니다.")
	}
	return list, validator.Pass("")
}

func (c *Client) SaveAddress(ctx context.Context, entry model.AddressEntry) ([]model.AddressEntry, validator.Result) {
	username := c.Session.Username(ctx)
	if username == "" {
		return nil, notLoggedIn()
	}
	return c.Addresses.Upsert(ctx, username, entry)
}

func (c *Client) SetDefaultAddress(ctx context.Context, id string) ([]model.AddressEntry, validator.Result) {
	username := c.Session.Username(ctx)
	if username == "" {
		return nil, notLoggedIn()
	}
	return c.Addresses.SetDefault(ctx, username, id)
}

func (c *Client) DeleteAddress(ctx context.Context, id string) ([]model.AddressEntry, validator.Result) {
	username := c.Session.Username(ctx)
	if username == "" {
		return nil, notLoggedIn()
	}
	return c.Addresses.Delete(ctx, username, id)
}

// LookupAddress ищет адрес во внешнем сервисе. Ошибки превращаются в сообщение, повторов нет.
func (c *Client) LookupAddress(ctx context.Context, keyword string) ([]juso.Address, validator.Result) {
	if c.lookup == nil {
		return nil, validator.Fail("주소 검색에 실패했습니다. 잠시 후 다시 시도해주세요.")
	}

	found, err := c.lookup.Search(ctx, keyword)
	if err != nil {
		var lookupErr *juso.LookupError
		switch {
		case errors.Is(err, juso.ErrEmptyKeyword):
			return nil, validator.Fail(err.Error())
		case errors.As(err, &lookupErr):
			return nil, validator.Fail(lookupErr.Message)
		default:
			return nil, validator.Fail("주소 검색에 실패했습니다. 잠시 후 다시 시도해주세요.")
		}
	}
	if len(found) == 0 {
		return []juso.Address{}, validator.Pass("검색 결과가 없습니다. 다른 키워드로 시도해보세요.")
	}
	return found, validator.Pass("")
}

// AddToCart добавляет товар каталога (по id или названию).
func (c *Client) AddToCart(ctx context.Context, idOrTitle string) validator.Result {
	p, ok := c.catalog.Resolve(idOrTitle)
	if !ok {
		return validator.Fail("상품을 찾을 수 없습니다.")
	}
	id, _ := c.catalog.ResolveID(idOrTitle)

	c.Cart.Add(ctx, id)
	c.toast(ctx, "%s이(가) 장바구니에 추가되었습니다", p.Title)
	return validator.Pass("")
}

func (c *Client) IncreaseQty(ctx context.Context, id string) validator.Result {
	if _, changed := c.Cart.ChangeQty(ctx, id, +1); !changed {
		return validator.Fail("장바구니에 없는 상품입니다.")
	}
	c.toast(ctx, "%s 수량이 증가했습니다", c.catalog.Title(id))
	return validator.Pass("")
}

// DecreaseQty уменьшает количество. Позиция с количеством 1 не меняется.
func (c *Client) DecreaseQty(ctx context.Context, id string) validator.Result {
	qty, changed := c.Cart.ChangeQty(ctx, id, -1)
	switch {
	case changed:
		c.toast(ctx, "%s 수량이 감소했습니다", c.catalog.Title(id))
		return validator.Pass("")
	case qty == 1:
		msg := fmt.Sprintf("%s의 최소 수량은 1개입니다", c.catalog.Title(id))
		c.toast(ctx, "%s", msg)
		return validator.Fail(msg)
	default:
		return validator.Fail("장바구니에 없는 상품입니다.")
	}
}

func (c *Client) RemoveFromCart(ctx context.Context, id string) validator.Result {
	if !c.Cart.Remove(ctx, id) {
		return validator.Fail("장바구니에 없는 상품입니다.")
	}
	c.toast(ctx, "%s이(가) 장바구니에서 제거되었습니다", c.catalog.Title(id))
	return validator.Pass("")
}

func (c *Client) ClearCart(ctx context.Context) {
	c.Cart.Clear(ctx)
	c.toast(ctx, "장바구니가 비워졌습니다")
}

func (c *Client) CartView(ctx context.Context) CartView {
	items := c.Cart.Cart(ctx)
	lines := c.Cart.Lines(ctx, c.catalog)
	total := cart.Total(lines)
	return CartView{
		Lines:      lines,
		Count:      model.TotalQty(items),
		Total:      total,
		TotalLabel: catalog.FormatPrice(total),
	}
}

// ToggleFavorite возвращает true, если товар теперь в избранном.
func (c *Client) ToggleFavorite(ctx context.Context, idOrTitle string) (bool, validator.Result) {
	p, ok := c.catalog.Resolve(idOrTitle)
	if !ok {
		return false, validator.Fail("상품을 찾을 수 없습니다.")
	}
	id, _ := c.catalog.ResolveID(idOrTitle)

	if c.Cart.ToggleFavorite(ctx, id) {
		c.toast(ctx, "%s이(가) 즐겨찾기에 추가되었습니다", p.Title)
		return true, validator.Pass("")
	}
	c.toast(ctx, "%s이(가) 즐겨찾기에서 제거되었습니다", p.Title)
	return false, validator.Pass("")
}

// ProductState - состояние товара для карточки: сколько в корзине и в избранном ли.
type ProductState struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Favorite bool   `json:"favorite"`
}

// ProductState принимает id или название товара.
func (c *Client) ProductState(ctx context.Context, idOrTitle string) (ProductState, validator.Result) {
	id, ok := c.catalog.ResolveID(idOrTitle)
	if !ok {
		return ProductState{}, validator.Fail("상품을 찾을 수 없습니다.")
	}
	return ProductState{
		ID:       id,
		Quantity: c.Cart.Quantity(ctx, id),
		Favorite: c.Cart.IsFavorite(ctx, id),
	}, validator.Pass("")
}

func (c *Client) RemoveFavorite(ctx context.Context, id string) validator.Result {
	if !c.Cart.RemoveFavorite(ctx, id) {
		return validator.Fail("즐겨찾기에 없는 상품입니다.")
	}
	c.toast(ctx, "%s이(가) 즐겨찾기에서 제거되었습니다", c.catalog.Title(id))
	return validator.Pass("")
}

// FavoriteProducts возвращает товары избранного, которые есть в каталоге.
func (c *Client) FavoriteProducts(ctx context.Context) []model.Product {
	ids := c.Cart.Favorites(ctx)
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.catalog.Resolve(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *Client) MoveFavoritesToCart(ctx context.Context) int {
	moved := c.Cart.MoveAllFavoritesToCart(ctx)
	if moved > 0 {
		c.toast(ctx, "즐겨찾기 항목을 모두 장바구니로 옮겼습니다")
	}
	return moved
}

// Checkout оформляет заказ из текущей корзины. Нужен вход; сумма считается
// по каталогу, товары вне каталога в сумму не входят.
func (c *Client) Checkout(ctx context.Context) (model.Order, validator.Result) {
	items := c.Cart.Cart(ctx)
	if len(items) == 0 {
		c.toast(ctx, "장바구니가 비어있습니다")
		return model.Order{}, validator.Fail("장바구니가 비어있습니다")
	}
	if !c.Policy.IsAuthenticated(ctx) {
		return model.Order{}, validator.Fail("주문하려면 로그인이 필요합니다.")
	}

	total := cart.Total(c.Cart.Lines(ctx, c.catalog))
	order, err := c.Orders.PlaceOrder(ctx, items, total, c.Session.Username(ctx))
	if err != nil {
		log.Printf("Не удалось оформить заказ: %v", err)
		return model.Order{}, validator.Fail("주문 처리 중 오류가 발생했습니다.")
	}

	c.Policy.SessionScoped().Set(ctx, LastOrderKey, order.ID)
	c.toast(ctx, "주문이 접수되었습니다. 감사합니다 🙏")
	return order, validator.Pass("주문이 접수되었습니다. 감사합니다 🙏")
}

// OrderHistory - журнал текущего пользователя или гостевой журнал вкладки.
func (c *Client) OrderHistory(ctx context.Context) []model.Order {
	return c.Orders.Preferred(ctx)
}
