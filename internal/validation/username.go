package validation

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen ограничение bcrypt на длину пароля в байтах
	MaxPasswordLen = 72
	// MaxFullNameLen максимальная длина отображаемого имени
	MaxFullNameLen = 100
)

// NormalizeHandle приводит username к каноническому виду (нижний регистр, без пробелов по краям)
func NormalizeHandle(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail приводит email к каноническому виду
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername проверяет, что username соответствует требованиям
func ValidateUsername(username string) error {
	return validation.Validate(username,
		validation.Required,
		validation.Length(MinUsernameLen, MaxUsernameLen),
		validation.Match(UsernamePattern).Error("can only contain letters, numbers and underscores"),
	)
}

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) error {
	return validation.Validate(email, validation.Required, is.Email)
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	return validation.Validate(password,
		validation.Required,
		validation.Length(MinPasswordLen, MaxPasswordLen),
	)
}

// ValidateFullName checks the display name.
func ValidateFullName(fullName string) error {
	return validation.Validate(strings.TrimSpace(fullName),
		validation.Required,
		validation.Length(1, MaxFullNameLen),
	)
}

// ValidateRegistration validates all registration fields at once.
// The returned error is a validation.Errors keyed by JSON field name.
func ValidateRegistration(fullName, username, email, password string) error {
	return validation.Errors{
		"full_name": ValidateFullName(fullName),
		"username":  ValidateUsername(username),
		"email":     ValidateEmail(email),
		"password":  ValidatePassword(password),
	}.Filter()
}

// ValidateAccount validates the editable account details.
func ValidateAccount(fullName, email string) error {
	return validation.Errors{
		"full_name": ValidateFullName(fullName),
		"email":     ValidateEmail(email),
	}.Filter()
}
