package account

import (
	"context"
	"log"
	"shoppingts/internal/model"
	"shoppingts/internal/validator"
	"strings"
)

// Максимальный размер изображения профиля в data-URI.
const maxProfileImageBytes = 4 * 1024 * 1024

const storeFailedMessage = "저장 중 오류가 발생했습니다."

// SignupForm - поля формы регистрации.
type SignupForm struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	RoadAddress     string `json:"roadAddress"`
	AddressDetail   string `json:"addressDetail"`
}

// Service - сценарии работы с аккаунтами: регистрация, вход, смена пароля,
// восстановление доступа, контакты и профиль. Результат всегда validator.Result.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CheckUsername - проверка формата и занятости логина (кнопка "중복 확인").
func (s *Service) CheckUsername(ctx context.Context, username string) validator.Result {
	username = strings.TrimSpace(username)
	if res := validator.ValidateUsername(username); !res.OK {
		return res
	}
	taken, err := s.repo.IsUsernameTaken(ctx, username)
	if err != nil {
		log.Printf("Проверка логина %s невозможна: %v", username, err)
		return validator.Fail(storeFailedMessage)
	}
	if taken {
		return validator.Fail("이미 사용 중인 아이디입니다.")
	}
	return validator.Pass("사용 가능한 아이디입니다.")
}

// CheckEmail - проверка формата и занятости email.
func (s *Service) CheckEmail(ctx context.Context, email string) validator.Result {
	email = strings.TrimSpace(email)
	if res := validator.ValidateEmail(email); !res.OK {
		return res
	}
	taken, err := s.repo.IsEmailTaken(ctx, email)
	if err != nil {
		log.Printf("Проверка email невозможна: %v", err)
		return validator.Fail(storeFailedMessage)
	}
	if taken {
		return validator.Fail("이미 등록된 이메일입니다.")
	}
	return validator.Pass("사용 가능한 이메일입니다.")
}

// Signup проверяет форму и добавляет аккаунт. Повторяющиеся логин или email
// (без учета регистра) отклоняются до записи.
func (s *Service) Signup(ctx context.Context, form SignupForm) validator.Result {
	username := strings.TrimSpace(form.Username)
	email := strings.TrimSpace(form.Email)
	name := strings.TrimSpace(form.Name)
	phone := strings.TrimSpace(form.Phone)
	road := strings.TrimSpace(form.RoadAddress)
	detail := strings.TrimSpace(form.AddressDetail)

	if res := s.CheckUsername(ctx, username); !res.OK {
		return res
	}
	if res := validator.ValidateName(name); !res.OK {
		return res
	}
	if res := s.CheckEmail(ctx, email); !res.OK {
		return res
	}
	if phone != "" {
		if res := validator.ValidatePhone(phone); !res.OK {
			return res
		}
	}
	if res := validator.ValidatePassword(form.Password); !res.OK {
		return res
	}
	if form.Password != form.PasswordConfirm {
		return validator.Fail("비밀번호가 일치하지 않습니다.")
	}

	acc := model.Account{
		Username:      username,
		Name:          name,
		Email:         email,
		Password:      form.Password,
		Phone:         phone,
		Address:       strings.TrimSpace(road + " " + detail),
		RoadAddress:   road,
		AddressDetail: detail,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		log.Printf("Аккаунт %s не сохранен: %v", username, err)
		return validator.Fail(storeFailedMessage)
	}
	log.Printf("Зарегистрирован аккаунт %s", username)
	return validator.Pass("가입이 완료되었습니다! 새 계정으로 로그인해주세요.")
}

// Authenticate сверяет логин и пароль (пароли хранятся открытым текстом).
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Account, validator.Result) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return model.Account{}, validator.Fail("아이디와 비밀번호를 모두 입력해주세요.")
	}

	acc, ok := s.repo.FindByUsername(ctx, username)
	if !ok || acc.Password != password {
		return model.Account{}, validator.Fail("계정 정보가 일치하지 않습니다. 다시 확인해주세요.")
	}
	return acc, validator.Pass("로그인에 성공했어요!")
}

// ChangePassword меняет пароль вошедшего пользователя.
func (s *Service) ChangePassword(ctx context.Context, username, current, next, confirm string) validator.Result {
	if username == "" {
		return validator.Fail("로그인 상태가 아닙니다.")
	}
	acc, ok := s.repo.FindByUsername(ctx, username)
	if !ok {
		return validator.Fail("계정을 찾을 수 없습니다.")
	}
	if acc.Password != current {
		return validator.Fail("현재 비밀번호가 일치하지 않습니다.")
	}
	if next == "" || confirm == "" {
		return validator.Fail("새 비밀번호와 확인을 모두 입력하세요.")
	}
	if next != confirm {
		return validator.Fail("새 비밀번호와 확인이 일치하지 않습니다.")
	}
	if next == current {
		return validator.Fail("새 비밀번호가 현재 비밀번호와 동일합니다. 다른 비밀번호를 입력하세요.")
	}
	if res := validator.ValidatePassword(next); !res.OK {
		return res
	}

	if !s.repo.Update(ctx, acc.Username, model.AccountPatch{Password: model.StringPtr(next)}) {
		return validator.Fail("비밀번호 변경 중 오류가 발생했습니다.")
	}
	return validator.Pass("비밀번호가 성공적으로 변경되었습니다.")
}

// FindUsername возвращает логин по email ("아이디 찾기").
func (s *Service) FindUsername(ctx context.Context, email string) (string, validator.Result) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", validator.Fail("이메일을 입력해주세요.")
	}
	if res := validator.ValidateEmail(email); !res.OK {
		return "", res
	}

	acc, ok := s.repo.FindByEmail(ctx, email)
	if !ok {
		return "", validator.Fail("등록된 계정이 없습니다.")
	}
	return acc.Username, validator.Pass("아이디를 찾았습니다.")
}

// VerifyRecovery - первый шаг восстановления пароля: логин и email должны совпасть.
func (s *Service) VerifyRecovery(ctx context.Context, username, email string) validator.Result {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return validator.Fail("아이디와 이메일을 모두 입력해주세요.")
	}

	acc, ok := s.repo.FindByUsername(ctx, username)
	if !ok {
		return validator.Fail("해당 아이디가 없습니다.")
	}
	if !strings.EqualFold(acc.Email, email) {
		return validator.Fail("입력한 이메일이 등록된 계정의 이메일과 일치하지 않습니다.")
	}
	return validator.Pass("본인 확인 되었습니다. 새 비밀번호를 입력하세요.")
}

// ResetPassword - второй шаг восстановления. Проверка личности повторяется,
// так как шаги приходят отдельными запросами.
func (s *Service) ResetPassword(ctx context.Context, username, email, next, confirm string) validator.Result {
	if res := s.VerifyRecovery(ctx, username, email); !res.OK {
		return res
	}
	if next == "" || confirm == "" {
		return validator.Fail("새 비밀번호와 확인 모두 입력해주세요.")
	}
	if next != confirm {
		return validator.Fail("비밀번호가 일치하지 않습니다.")
	}
	if res := validator.ValidatePassword(next); !res.OK {
		return res
	}

	if !s.repo.Update(ctx, strings.TrimSpace(username), model.AccountPatch{Password: model.StringPtr(next)}) {
		return validator.Fail("비밀번호 재설정에 실패했습니다. 잠시 후 다시 시도해 주세요.")
	}
	return validator.Pass("비밀번호가 변경되었습니다. 로그인 화면에서 새 비밀번호로 로그인하세요.")
}

// UpdateContact меняет email и телефон.
func (s *Service) UpdateContact(ctx context.Context, username, email, phone string) validator.Result {
	if username == "" {
		return validator.Fail("로그인이 필요합니다.")
	}
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if res := validator.ValidateEmail(email); !res.OK {
		return res
	}
	if res := validator.ValidatePhone(phone); !res.OK {
		return res
	}
	if other, ok := s.repo.FindByEmail(ctx, email); ok && !strings.EqualFold(other.Username, username) {
		return validator.Fail("이미 등록된 이메일입니다.")
	}

	patch := model.AccountPatch{Email: model.StringPtr(email), Phone: model.StringPtr(phone)}
	if !s.repo.Update(ctx, username, patch) {
		return validator.Fail(storeFailedMessage)
	}
	return validator.Pass("연락처 정보가 저장되었습니다.")
}

// UpdateProfileImage сохраняет изображение профиля (data-URI). Пустая строка удаляет его.
func (s *Service) UpdateProfileImage(ctx context.Context, username, dataURI string) validator.Result {
	if username == "" {
		return validator.Fail("로그인이 필요합니다.")
	}
	if dataURI != "" {
		if !strings.HasPrefix(dataURI, "data:image/") {
			return validator.Fail("이미지 파일만 업로드할 수 있습니다.")
		}
		if len(dataURI) > maxProfileImageBytes {
			return validator.Fail("이미지는 4MB 이하만 업로드 가능합니다.")
		}
	}

	if !s.repo.Update(ctx, username, model.AccountPatch{ProfileImage: model.StringPtr(dataURI)}) {
		return validator.Fail("프로필 저장에 실패했습니다.")
	}
	if dataURI == "" {
		return validator.Pass("프로필 사진이 삭제되었습니다.")
	}
	return validator.Pass("프로필 사진이 저장되었습니다.")
}
