package models

import (
	"strings"

	"github.com/google/uuid"
)

// GuestIDPrefix - префикс идентификатора гостевой сессии
const GuestIDPrefix = "guest-"

// User - личность, от имени которой выполняется операция
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
	IsGuest    bool   `json:"is_guest"`
}

// NewGuest возвращает гостевую личность со своим идентификатором.
// У каждой сессии он новый.
func NewGuest() User {
	return User{
		ID:         GuestIDPrefix + uuid.NewString(),
		Name:       "Guest",
		Reputation: 0,
		IsGuest:    true,
	}
}

// IsGuestID сообщает, выдан ли идентификатор гостевой сессии
func IsGuestID(id string) bool {
	return strings.HasPrefix(id, GuestIDPrefix)
}
