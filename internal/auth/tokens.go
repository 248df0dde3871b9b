package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "dinerate"

	audienceSession = "session"
	audienceReset   = "password-reset"
)

// SessionClaims are carried by the long-lived sign-in token.
type SessionClaims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ResetClaims are carried by a password-reset token.
type ResetClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a process-wide secret.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// NewTokenManager returns a manager for the given secret. An empty secret
// is rejected so a misconfigured process cannot sign anything.
func NewTokenManager(secret string, sessionTTL, resetTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	return &TokenManager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// ResetTTL is how long a reset token and its stored credential stay valid.
func (m *TokenManager) ResetTTL() time.Duration {
	return m.resetTTL
}

// GenerateSession signs a session token for the user.
func (m *TokenManager) GenerateSession(userID, username string) (string, error) {
	now := m.now().UTC()
	claims := &SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateSession verifies signature, audience and expiry of a session token.
func (m *TokenManager) ValidateSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audienceSession),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid session token claims")
	}
	return claims, nil
}

// GenerateReset signs a reset token for the user and returns it together
// with its expiry. Each token carries a random ID so two tokens issued in
// the same second still differ.
func (m *TokenManager) GenerateReset(userID string) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.resetTTL)
	claims := &ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceReset},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign reset token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseReset verifies the signature and audience of a reset token and
// returns its claims. Expiry is left to the caller, which checks it
// against the stored reset credential.
func (m *TokenManager) ParseReset(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse reset token: %w", err)
	}
	if !token.Valid || claims.UserID == "" || claims.Issuer != issuer {
		return nil, errors.New("invalid reset token claims")
	}
	aud, _ := claims.GetAudience()
	if len(aud) != 1 || aud[0] != audienceReset {
		return nil, errors.New("token is not a password-reset token")
	}
	return claims, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}
