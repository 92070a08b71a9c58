package validator

import (
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Result - итог проверки: флаг и сообщение для пользователя.
// Ошибки валидации никогда не возвращаются как error.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Pass возвращает успешный Result с необязательным сообщением.
func Pass(message string) Result { return Result{OK: true, Message: message} }

// Fail возвращает неуспешный Result.
func Fail(message string) Result { return Result{OK: false, Message: message} }

var (
	nameRe     = regexp.MustCompile(`^[\p{L}\s]+$`)
	emailRe    = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}$`)
	alnumRe    = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	letterRe   = regexp.MustCompile(`[a-zA-Z]`)
	digitRe    = regexp.MustCompile(`\d`)
	nonDigitRe = regexp.MustCompile(`\D`)
	mobileRe   = regexp.MustCompile(`^01[016789]\d{7,8}$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]`)
	validate   *validator.Validate
	once       sync.Once
)

// ValidateName: непустое, от 2 символов, только буквы (любого алфавита) и пробелы.
func ValidateName(value string) Result {
	if value == "" {
		return Fail("이름을 입력해주세요.")
	}
	if utf8.RuneCountInString(value) < 2 {
		return Fail("이름은 2자 이상 입력해주세요.")
	}
	if !nameRe.MatchString(value) {
		return Fail("이름에는 숫자나 특수문자를 사용할 수 없습니다.")
	}
	return Pass("")
}

// ValidateUsername: от 4 символов, только латиница и цифры, обязательно и то и другое.
func ValidateUsername(value string) Result {
	if value == "" {
		return Fail("아이디를 입력해주세요.")
	}
	if utf8.RuneCountInString(value) < 4 {
		return Fail("아이디는 4자 이상이어야 합니다.")
	}
	if !alnumRe.MatchString(value) {
		return Fail("영문과 숫자만 사용할 수 있습니다.")
	}
	if !letterRe.MatchString(value) || !digitRe.MatchString(value) {
		return Fail("영문과 숫자를 모두 포함해야 합니다.")
	}
	return Pass("")
}

func ValidateEmail(value string) Result {
	if value == "" {
		return Fail("이메일을 입력해주세요.")
	}
	if !emailRe.MatchString(value) {
		return Fail("이메일 형식이 올바르지 않습니다.")
	}
	return Pass("")
}

// ValidatePhone проверяет корейский мобильный номер: 10-11 цифр после удаления
// разделителей, префикс 010/011/016/017/018/019.
func ValidatePhone(value string) Result {
	if value == "" {
		return Fail("휴대폰 번호를 입력해주세요.")
	}
	digits := DigitsOnly(value)
	if len(digits) < 10 || len(digits) > 11 {
		return Fail("휴대폰 번호는 10~11자리여야 합니다.")
	}
	if !mobileRe.MatchString(digits) {
		return Fail("휴대폰 번호 형식이 올바르지 않습니다.")
	}
	return Pass("")
}

// ValidatePassword: от 6 символов, заглавная, строчная и спецсимвол.
func ValidatePassword(value string) Result {
	if utf8.RuneCountInString(value) < 6 {
		return Fail("비밀번호는 6자 이상이어야 합니다.")
	}
	if !upperRe.MatchString(value) {
		return Fail("대문자를 최소 1자 포함하세요.")
	}
	if !lowerRe.MatchString(value) {
		return Fail("소문자를 최소 1자 포함하세요.")
	}
	if !nonAlnumRe.MatchString(value) {
		return Fail("특수문자를 최소 1자 포함하세요.")
	}
	return Pass("")
}

// DigitsOnly удаляет все символы, кроме цифр.
func DigitsOnly(value string) string {
	return nonDigitRe.ReplaceAllString(value, "")
}

// getInstance возвращает синглтон-экземпляр валидатора с правилами магазина.
func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		rules := map[string]func(string) Result{
			"shop_name":     ValidateName,
			"shop_username": ValidateUsername,
			"shop_email":    ValidateEmail,
			"shop_phone":    ValidatePhone,
			"shop_password": ValidatePassword,
		}
		for tag, rule := range rules {
			rule := rule
			_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return rule(fl.Field().String()).OK
			})
		}
	})
	return validate
}

// ValidateStruct выполняет валидацию по тегам структуры.
func ValidateStruct(s interface{}) error {
	return getInstance().Struct(s)
}
