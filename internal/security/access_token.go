package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var (
	ErrSigningNotConfigured = errors.New("signing key or secret not configured")
	ErrInvalidToken         = errors.New("invalid access token")
	ErrTokenExpired         = errors.New("token expired or not valid yet")
	ErrInvalidIssuer        = errors.New("invalid issuer")
)

const DefaultAccessTokenTTL = 10 * time.Minute

// VideoGrant — права участника в одной комнате внешнего медиа-транспорта.
// Формат клеймов совместим с тем, что ожидает SFU.
type VideoGrant struct {
	Room           string `json:"room"`
	RoomJoin       bool   `json:"roomJoin"`
	CanPublish     bool   `json:"canPublish"`
	CanSubscribe   bool   `json:"canSubscribe"`
	CanPublishData bool   `json:"canPublishData"`
}

type AccessClaims struct {
	jwt.StandardClaims // Issuer=ключ API, Subject=identity участника
	Video              VideoGrant `json:"video"`
}

// Используется SigningMethodHS256: транспорт проверяет подпись тем же
// общим секретом, которым мы подписываем.
type AccessTokenIssuer struct {
	apiKey    string // идентификатор ключа, уходит в iss
	apiSecret string
	ttl       time.Duration
}

func NewAccessTokenIssuer(apiKey, apiSecret string, ttl time.Duration) *AccessTokenIssuer {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &AccessTokenIssuer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       ttl,
	}
}

func (i *AccessTokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue выпускает токен на одну комнату и одного участника, exp=now+ttl.
// Идемпотентности нет: повторный выпуск даёт другой токен (jti, iat).
func (i *AccessTokenIssuer) Issue(roomName, identity string) (string, error) {
	if i.apiKey == "" || i.apiSecret == "" {
		return "", ErrSigningNotConfigured
	}

	now := time.Now()
	claims := AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   identity,
			Issuer:    i.apiKey,
			IssuedAt:  now.Unix(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(i.ttl).Unix(),
		},
		Video: VideoGrant{
			Room:           roomName,
			RoomJoin:       true,
			CanPublish:     true,
			CanSubscribe:   true,
			CanPublishData: true,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(i.apiSecret))
}

// ParseAndValidate разбирает и проверяет токен, выпущенный этим же ключом.
// Отзыв токенов не поддерживается: до exp токен остаётся валидным.
func (i *AccessTokenIssuer) ParseAndValidate(tokenStr string) (*AccessClaims, error) {
	if i.apiKey == "" || i.apiSecret == "" {
		return nil, ErrSigningNotConfigured
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return []byte(i.apiSecret), nil
	})
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok &&
			vErr.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return nil, ErrTokenExpired
		}
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(i.apiKey, true) {
		return nil, ErrInvalidIssuer
	}

	return claims, nil
}
