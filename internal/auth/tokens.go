// Package auth определяет личность пользователя по bearer-токену или гостевой сессии
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shenikar/community_alerts/internal/models"
)

// ErrInvalidCredentials - токен или гостевая сессия не прошли проверку
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenManager выпускает и проверяет HS256 токены зарегистрированных пользователей
type TokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type userClaims struct {
	jwt.RegisteredClaims
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
}

// Issue подписывает токен для пользователя. Выпуск токенов нужен сервисам входа и тестам.
func (m *TokenManager) Issue(user models.User, ttl time.Duration) (string, error) {
	if user.IsGuest || user.ID == "" || models.IsGuestID(user.ID) {
		return "", fmt.Errorf("%w: token can not be issued for a guest", ErrInvalidCredentials)
	}
	now := time.Now()
	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:       user.Name,
		Reputation: user.Reputation,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись, срок и издателя токена
func (m *TokenManager) Parse(tokenString string) (models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &userClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*userClaims)
	if !ok || !token.Valid || claims.Subject == "" || models.IsGuestID(claims.Subject) {
		return models.User{}, fmt.Errorf("%w: invalid token claims", ErrInvalidCredentials)
	}

	return models.User{
		ID:         claims.Subject,
		Name:       claims.Name,
		Reputation: claims.Reputation,
	}, nil
}
