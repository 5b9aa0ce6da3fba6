// Package models содержит доменные структуры дашборда: профиль пользователя,
// адреса и страницу адресов, а также тела запросов к удалённому API.
package models

import "time"

// Role роль пользователя в удалённом API.
type Role string

const (
	// RoleUser обычный пользователь, видит только свои адреса.
	RoleUser Role = "USER"
	// RoleAdmin администратор, видит все адреса.
	RoleAdmin Role = "ADMIN"
)

// Profile профиль аутентифицированного пользователя.
// ID и Role обязательны всегда, остальные поля могут прийти пустыми.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin сообщает, что профиль имеет роль ADMIN.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UserSummary владелец адреса, встроенный в Address.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	CPF   string `json:"cpf"`
	Role  Role   `json:"role,omitempty"`
}

// SignInRequest тело запроса POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse ответ POST /auth/signin. Кроме токена API может вернуть что угодно ещё.
type SignInResponse struct {
	Token string `json:"token"`
}

// SignUpRequest тело запроса POST /auth/signup.
type SignUpRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	CPF                  string `json:"cpf" validate:"required"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

// ProfileUpdate тело запроса PUT /user/{id}. Пустые поля не отправляются.
type ProfileUpdate struct {
	ID                   string `json:"id"`
	Name                 string `json:"name,omitempty"`
	Email                string `json:"email,omitempty" validate:"omitempty,email"`
	CPF                  string `json:"cpf,omitempty"`
	Password             string `json:"password,omitempty" validate:"omitempty,min=6"`
	PasswordConfirmation string `json:"passwordConfirmation,omitempty" validate:"eqfield=Password"`
}
