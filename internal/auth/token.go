package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"phrasebook/internal/services"
)

// Claims is the verified content of a session token.
type Claims struct {
	User      string
	ExpiresAt time.Time
	IssuedAt  time.Time
	SessionID string
}

// Signer issues and verifies HMAC-SHA256 session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer using secret. An empty secret is replaced with
// random bytes, so tokens do not survive a restart.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns how long issued tokens stay valid.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token for user.
func (s *Signer) Issue(user string) (string, error) {
	if user == "" || strings.Contains(user, "|") {
		return "", services.Wrap(services.ErrValidation, "auth", "issue", "invalid user name", nil)
	}
	now := s.now()
	payload := strings.Join([]string{
		user,
		strconv.FormatInt(now.Add(s.ttl).Unix(), 10),
		strconv.FormatInt(now.Unix(), 10),
		uuid.NewString(),
	}, "|")
	encodedPayload := base64.RawURLEncoding.EncodeToString([]byte(payload))
	encodedSignature := base64.RawURLEncoding.EncodeToString(s.sign([]byte(payload)))
	return encodedPayload + "." + encodedSignature, nil
}

// Verify checks the signature and expiry of token.
func (s *Signer) Verify(token string) (Claims, error) {
	encodedPayload, encodedSignature, ok := strings.Cut(token, ".")
	if !ok {
		return Claims{}, unauthorized("invalid token format", nil)
	}
	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return Claims{}, unauthorized("invalid token payload", err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(encodedSignature)
	if err != nil {
		return Claims{}, unauthorized("invalid token signature", err)
	}
	if !hmac.Equal(signature, s.sign(payload)) {
		return Claims{}, unauthorized("invalid token signature", nil)
	}

	parts := strings.Split(string(payload), "|")
	if len(parts) != 4 {
		return Claims{}, unauthorized("invalid payload format", nil)
	}
	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Claims{}, unauthorized("invalid expiry", err)
	}
	issued, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, unauthorized("invalid issue time", err)
	}
	claims := Claims{
		User:      parts[0],
		ExpiresAt: time.Unix(expires, 0),
		IssuedAt:  time.Unix(issued, 0),
		SessionID: parts[3],
	}
	if !s.now().Before(claims.ExpiresAt) {
		return Claims{}, unauthorized("token has expired", nil)
	}
	return claims, nil
}

func (s *Signer) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func unauthorized(message string, err error) error {
	return services.Wrap(services.ErrUnauthorized, "auth", "verify", message, err)
}
