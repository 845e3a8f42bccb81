// Package auth implements the optional owner password and access-token
// sessions. The server runs single-user; when no owner password has been
// set, every endpoint is open.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer is the issuer of the jwt token.
	Issuer = "dentkao"
	// KeyID is the version of the signing key.
	KeyID = "v1"
	// AccessTokenAudienceName is the audience name of the access token.
	AccessTokenAudienceName = "user.access-token"
	// AccessTokenDuration is the lifetime of the access token.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// ClaimsMessage is the jwt claims carried by an access token.
type ClaimsMessage struct {
	jwt.RegisteredClaims
}

// GenerateAccessToken generates an access token valid until expirationTime.
func GenerateAccessToken(expirationTime time.Time, secret []byte) (string, error) {
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Audience: jwt.ClaimStrings{AccessTokenAudienceName},
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Subject:  "owner",
	}
	if !expirationTime.IsZero() {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(expirationTime)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{RegisteredClaims: registeredClaims})
	token.Header["kid"] = KeyID
	return token.SignedString(secret)
}

// ValidateAccessToken parses and validates an access token, returning its
// claims on success.
func ValidateAccessToken(tokenString string, secret []byte) (*ClaimsMessage, error) {
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Name {
			return nil, errors.Errorf("unexpected access token signing method=%v, expect %v", t.Header["alg"], jwt.SigningMethodHS256)
		}
		if kid, ok := t.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.Errorf("unexpected access token kid=%v", t.Header["kid"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid or expired access token")
	}

	audienceMatch := false
	for _, audience := range claims.Audience {
		if audience == AccessTokenAudienceName {
			audienceMatch = true
			break
		}
	}
	if !audienceMatch {
		return nil, errors.Errorf("invalid access token audience %v", claims.Audience)
	}
	return claims, nil
}
