package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails signature, structure, or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// Claims is the decoded payload of a credential token. The principal id travels in Subject.
type Claims struct {
	StoreID string `json:"store_id"`
	jwt.RegisteredClaims
}

// PrincipalID returns the subject the token was issued for
func (c *Claims) PrincipalID() string {
	return c.Subject
}

// JWTUtil issues and verifies signed, time-bounded identity tokens
type JWTUtil struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		signingKey: []byte(config.SigningKey),
		ttl:        time.Duration(config.ExpirationHours) * time.Hour,
		now:        time.Now,
	}
}

// GenerateToken creates a token bound to one principal inside one store
func (j *JWTUtil) GenerateToken(principalID, storeID string) (string, error) {
	if principalID == "" || storeID == "" {
		return "", errors.New("principal and store ids are required")
	}

	now := j.now()
	claims := Claims{
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// ValidateToken validates and parses the JWT token. Every failure wraps ErrInvalidToken.
func (j *JWTUtil) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.StoreID == "" {
		return nil, fmt.Errorf("%w: missing subject or store", ErrInvalidToken)
	}

	return claims, nil
}
