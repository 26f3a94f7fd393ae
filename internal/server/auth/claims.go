// Package auth contains the token service, password hashing, and helpers to
// carry the authenticated identity through a request context.
package auth

import (
	"errors"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags a token with the flow it was minted for. A token is only
// accepted by the flow named in its typ claim.
type Purpose string

const (
	PurposeAccess       Purpose = "access"
	PurposeRefresh      Purpose = "refresh"
	PurposeVerification Purpose = "verification"
	PurposeReset        Purpose = "reset"
)

// Claims is the payload of every token. Role is set on access tokens only.
type Claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"typ"`
	Role    string  `json:"role,omitempty"`
}

// SignClaims signs claims with HS256 after stamping iat and exp from now and ttl.
func SignClaims(claims Claims, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyClaims parses token, checks the signature against secret, the expiry
// against now, and the purpose. Errors are reduced to common.ErrTokenExpired,
// common.ErrTokenMalformed or common.ErrTokenSignature.
func VerifyClaims(token string, secret []byte, purpose Purpose, now time.Time) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, common.ErrTokenSignature
		default:
			return nil, common.ErrTokenMalformed
		}
	}

	if claims.Purpose != purpose {
		return nil, common.ErrTokenSignature
	}
	if claims.Subject == "" {
		return nil, common.ErrTokenMalformed
	}

	return claims, nil
}
