package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/civic-connect/backend/internal/auth"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sessionKey = "session"

// SessionAuth turns bearer tokens into the request's *models.Session.
type SessionAuth struct {
	tokens  *auth.TokenManager
	revoked auth.RevocationStore
	log     *zap.Logger
}

func NewSessionAuth(tokens *auth.TokenManager, revoked auth.RevocationStore, log *zap.Logger) *SessionAuth {
	return &SessionAuth{tokens: tokens, revoked: revoked, log: log}
}

// Required rejects requests without a valid, unrevoked token.
func (a *SessionAuth) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}
			if err := a.attach(c, tokenString); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// Optional attaches a session when a valid token is present and otherwise
// lets the request through anonymously. A malformed or revoked token is
// still an error.
func (a *SessionAuth) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}
			if err := a.attach(c, tokenString); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func (a *SessionAuth) attach(c echo.Context, tokenString string) error {
	session, err := a.tokens.Parse(tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	revoked, err := a.revoked.IsRevoked(c.Request().Context(), session.TokenID)
	if err != nil {
		a.log.Error("session revocation check failed", zap.String("token", session.TokenID), zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Could not verify session, please try again")
	}
	if revoked {
		return echo.NewHTTPError(http.StatusUnauthorized, "Session has been signed out")
	}

	c.Set(sessionKey, session)
	return nil
}

// RequireRole must run after Required.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := SessionFrom(c)
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			for _, role := range roles {
				if session.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action")
		}
	}
}

// SessionFrom returns the caller's session, or nil for anonymous requests.
func SessionFrom(c echo.Context) *models.Session {
	session, _ := c.Get(sessionKey).(*models.Session)
	return session
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
