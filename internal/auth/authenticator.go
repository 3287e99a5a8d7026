package auth

import (
	"github.com/shenikar/community_alerts/internal/models"
)

// Authenticator выбирает личность по переданным учетным данным.
// Bearer-токен имеет приоритет над гостевой сессией.
type Authenticator struct {
	tokens *TokenManager
	guests *GuestSessions
}

func NewAuthenticator(tokens *TokenManager, guests *GuestSessions) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		guests: guests,
	}
}

// Authenticate возвращает nil без ошибки, если учетных данных нет вовсе
func (a *Authenticator) Authenticate(bearer, guestSession string) (*models.User, error) {
	switch {
	case bearer != "":
		user, err := a.tokens.Parse(bearer)
		if err != nil {
			return nil, err
		}
		return &user, nil
	case guestSession != "":
		user, err := a.guests.Open(guestSession)
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
	return nil, nil
}

// IssueGuest открывает новую гостевую сессию
func (a *Authenticator) IssueGuest() (string, models.User, error) {
	return a.guests.Issue()
}
