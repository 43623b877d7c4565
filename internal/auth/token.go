// Package auth issues and verifies the signed session tokens handed out at
// sign-in, and tracks tokens revoked by logout.
package auth

import (
	"time"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TokenManager signs session claims with HS256.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for s. The returned session carries the new token id
// and expiry.
func (m *TokenManager) Issue(s models.Session) (string, *models.Session, error) {
	now := m.now()
	s.TokenID = uuid.NewString()
	s.ExpiresAt = now.Add(m.ttl)
	if s.Role == "" {
		s.Role = models.RoleCitizen
	}

	claims := &models.SessionClaims{
		UserID:   s.UserID,
		Name:     s.Name,
		Email:    s.Email,
		Role:     s.Role,
		State:    s.State,
		District: s.District,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.TokenID,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "sign session token")
	}
	return signed, &s, nil
}

// Parse verifies a token and returns the session it describes.
func (m *TokenManager) Parse(tokenString string) (*models.Session, error) {
	claims := &models.SessionClaims{}
	parser := jwt.Parser{}
	parser.ValidMethods = []string{jwt.SigningMethodHS256.Alg()}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Wrap(apperrors.ErrAuthenticationRequired, "invalid or expired token")
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, errors.Wrap(apperrors.ErrAuthenticationRequired, "token is missing its subject")
	}

	session := &models.Session{
		UserID:   claims.UserID,
		Name:     claims.Name,
		Email:    claims.Email,
		Role:     claims.Role,
		State:    claims.State,
		District: claims.District,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
