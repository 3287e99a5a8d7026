package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shenikar/community_alerts/internal/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyIterations = 100000
	keyLength     = 32
)

// GuestSessions шифрует гостевую личность в непрозрачную строку для клиента.
// Ключ AES-GCM выводится из секрета через PBKDF2-SHA256.
type GuestSessions struct {
	aead cipher.AEAD
}

type guestPayload struct {
	User     models.User `json:"user"`
	IssuedAt time.Time   `json:"issued_at"`
}

func NewGuestSessions(secret, salt string) (*GuestSessions, error) {
	if secret == "" {
		return nil, fmt.Errorf("guest session secret is empty")
	}
	key := pbkdf2.Key([]byte(secret), []byte(salt), keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &GuestSessions{aead: aead}, nil
}

// Issue создает новую гостевую сессию
func (g *GuestSessions) Issue() (string, models.User, error) {
	guest := models.NewGuest()
	plain, err := json.Marshal(guestPayload{User: guest, IssuedAt: time.Now().UTC()})
	if err != nil {
		return "", models.User{}, fmt.Errorf("marshal guest session: %w", err)
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", models.User{}, fmt.Errorf("generate nonce: %w", err)
	}
	// Nonce идет первым, за ним шифротекст
	sealed := g.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), guest, nil
}

// Open расшифровывает сессию и проверяет, что внутри действительно гость
func (g *GuestSessions) Open(blob string) (models.User, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: malformed guest session", ErrInvalidCredentials)
	}
	nonceSize := g.aead.NonceSize()
	if len(sealed) <= nonceSize {
		return models.User{}, fmt.Errorf("%w: guest session is too short", ErrInvalidCredentials)
	}

	plain, err := g.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: guest session can not be decrypted", ErrInvalidCredentials)
	}

	var payload guestPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return models.User{}, fmt.Errorf("%w: guest session payload: %w", ErrInvalidCredentials, err)
	}
	if !payload.User.IsGuest || !models.IsGuestID(payload.User.ID) {
		return models.User{}, fmt.Errorf("%w: session does not hold a guest", ErrInvalidCredentials)
	}
	return payload.User, nil
}
