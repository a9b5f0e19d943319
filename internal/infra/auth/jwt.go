// File: internal/infra/auth/jwt.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"guildahub/internal/domain"
	"guildahub/internal/domain/ports/adapter"
)

var _ adapter.IdentityVerifier = (*JWTVerifier)(nil)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HMAC-signed session tokens. The subject carries the
// uid, a custom claim carries the email.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTVerifier(secret string, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), ttl: ttl}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (adapter.Identity, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return adapter.Identity{}, domain.ErrUnauthorized
	}
	return adapter.Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// Mint issues a signed session token for the identity.
func (v *JWTVerifier) Mint(ident adapter.Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: ident.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
