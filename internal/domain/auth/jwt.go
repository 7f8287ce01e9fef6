// Package auth validates bearer tokens and produces the actor identity.
// Credentials are issued elsewhere; the ledger core only consumes identities.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
)

// Claims are the token claims the platform understands.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id"`
}

// JWTValidator validates signed tokens and extracts the actor.
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a validator for HS256 tokens.
func NewJWTValidator(secret, issuer string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken parses and verifies a token, returning the actor identity.
func (v *JWTValidator) ValidateToken(tokenString string) (*appctx.ActorContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token claims")
	}
	if claims.Username == "" {
		return nil, apperror.NewUnauthorized("token missing username")
	}

	return &appctx.ActorContext{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		BranchID: claims.BranchID,
	}, nil
}

// IssueToken signs a token for an actor. Used by operational tooling;
// the API itself never issues credentials.
func (v *JWTValidator) IssueToken(actor appctx.ActorContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: actor.Username,
		Role:     actor.Role,
		BranchID: actor.BranchID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
