package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"soundapi/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by an issued token.
type Claims struct {
	UserID   string
	Username string
}

type jwtClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 JWTs. The token payload is the
// identity context handed to the core; verification details stay here.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager from auth config.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    cfg.JWTTTL,
	}, nil
}

// Issue signs a token for the given user.
func (m *TokenManager) Issue(userID, username string) (string, error) {
	now := time.Now().UTC()
	claims := jwtClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates signature and expiry and returns the embedded identity.
func (m *TokenManager) Parse(raw string) (Claims, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(raw, &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return Claims{}, ErrInvalidToken
	}
	if out.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: out.Subject, Username: out.Username}, nil
}
