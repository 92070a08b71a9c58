package juso

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyKeyword возвращается без обращения к сервису.
var ErrEmptyKeyword = errors.New("검색어를 입력해주세요.")

// Address - дорожный адрес из ответа сервиса поиска адресов.
type Address struct {
	RoadAddr  string `json:"roadAddr"`
	JibunAddr string `json:"jibunAddr,omitempty"`
	ZipNo     string `json:"zipNo,omitempty"`
}

// LookupError - ошибка поиска с сообщением, которое можно показать пользователю.
type LookupError struct {
	Message string
	Err     error
}

func (e *LookupError) Error() string { return e.Message }

func (e *LookupError) Unwrap() error { return e.Err }

type searchResponse struct {
	Results struct {
		Common struct {
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"errorMessage"`
		} `json:"common"`
		Juso []Address `json:"juso"`
	} `json:"results"`
}

// Client ищет дорожные адреса. Один запрос на поиск, без повторов.
type Client struct {
	http *resty.Client
	url  string
	key  string
}

// New создает клиента для сервиса по адресу url с ключом key.
func New(url, key string) *Client {
	return &Client{
		http: resty.New().SetHeader("Accept", "application/json"),
		url:  url,
		key:  key,
	}
}

// Search возвращает до 20 адресов по ключевому слову.
// Пустой результат - это nil и nil, а не ошибка.
func (c *Client) Search(ctx context.Context, keyword string) ([]Address, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"confmKey":     c.key,
			"keyword":      keyword,
			"resultType":   "json",
			"currentPage":  "1",
			"countPerPage": "20",
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Post(c.url)
	if err != nil {
		log.Printf("Ошибка запроса к сервису адресов: %v", err)
		return nil, &LookupError{Message: "주소 검색 요청에 실패했습니다.", Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("Сервис адресов ответил статусом %d", resp.StatusCode())
		return nil, &LookupError{Message: "주소 검색 요청에 실패했습니다."}
	}

	if code := body.Results.Common.ErrorCode; code != "" && code != "0" {
		msg := body.Results.Common.ErrorMessage
		if msg == "" {
			msg = "주소 검색 중 오류가 발생했습니다."
		}
		return nil, &LookupError{Message: msg}
	}

	if len(body.Results.Juso) == 0 {
		return nil, nil
	}
	return body.Results.Juso, nil
}
