// Пакет token: подписанные короткоживущие токены доступа (JWT, HMAC).
// Токен не хранится на сервере: проверяются только подпись, срок и claims.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken: подпись неверна, токен повреждён, просрочен
// или не содержит обязательных claims.
var ErrInvalidToken = errors.New("невалидный или просроченный токен")

// Назначение и роль токенов скачивания файлов.
const (
	PurposeFileAccess = "file_access"
	RoleNone          = "none"
)

// Claims: содержимое токена доступа.
type Claims struct {
	jwt.RegisteredClaims
	// SubjectID дублирует sub
	SubjectID string `json:"id"`
	// Type: назначение токена (file_access)
	Type string `json:"type"`
	Role string `json:"role"`
}

// Codec выпускает и проверяет токены одним HMAC-ключом.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// New создаёт кодек. algorithm: HS256, HS384 или HS512.
func New(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("пустой ключ подписи")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("неподдерживаемый алгоритм подписи %q", algorithm)
	}
	return &Codec{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

// Issue выпускает токен для subjectID со сроком действия ttl.
func (c *Codec) Issue(subjectID, purpose, role string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SubjectID: subjectID,
		Type:      purpose,
		Role:      role,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, срок действия и обязательные claims (sub, id, exp).
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.SubjectID == "" {
		return nil, fmt.Errorf("%w: отсутствует идентификатор субъекта", ErrInvalidToken)
	}
	return claims, nil
}

// VerifyPurpose проверяет токен и его назначение.
func (c *Codec) VerifyPurpose(tokenString, purpose string) (*Claims, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != purpose {
		return nil, fmt.Errorf("%w: назначение %q, ожидается %q", ErrInvalidToken, claims.Type, purpose)
	}
	return claims, nil
}
