package handlers

import (
	"net/http"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/auth"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   auth.IDTokenVerifier
	approvals      *services.Approvals
	tokens         *auth.TokenManager
	revoked        auth.RevocationStore
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth auth.IDTokenVerifier, approvals *services.Approvals, tokens *auth.TokenManager, revoked auth.RevocationStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		approvals:      approvals,
		tokens:         tokens,
		revoked:        revoked,
		log:            log,
	}
}

// RegisterAuthRoutes registers authentication-related routes. requireAuth
// guards logout.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/admin/signin", h.AdminSignIn)
	g.POST("/logout", h.Logout, requireAuth)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	// Check if user with this email already exists
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		UID:         uuid.NewString(),
		DisplayName: req.Name,
		Email:       req.Email,
		Password:    string(hashedPassword),
		State:       req.State,
		District:    req.District,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return httpError(err)
	}
	h.log.Info("user signed up", zap.String("uid", user.UID))

	return h.respondWithToken(c, http.StatusCreated, user, citizenSession(user))
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.checkPassword(c, req)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusOK, user, citizenSession(user))
}

// FirebaseLogin verifies a Firebase ID token and issues a local session token.
// First-time users get a profile created from the token's claims.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	identity, err := auth.VerifyFirebaseToken(ctx, h.firebaseAuth, req.IDToken)
	if err != nil {
		return httpError(err)
	}

	user, err := h.userRepository.GetUserByUID(ctx, identity.UID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		user = &models.User{
			UID:         identity.UID,
			DisplayName: identity.Name,
			Email:       identity.Email,
			PhotoURL:    identity.Picture,
		}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return httpError(err)
		}
		h.log.Info("user created from firebase login", zap.String("uid", user.UID))
	case err != nil:
		return httpError(err)
	default:
		if user.DisplayName == "" && identity.Name != "" {
			user.DisplayName = identity.Name
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return httpError(err)
			}
		}
	}

	return h.respondWithToken(c, http.StatusOK, user, citizenSession(user))
}

// AdminSignIn authenticates with email and password and grants the admin role
// the account is entitled to.
func (h *AuthHandler) AdminSignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.checkPassword(c, req)
	if err != nil {
		return err
	}

	role, scope, err := h.approvals.ResolveRole(c.Request().Context(), user.UID)
	if err != nil {
		return httpError(err)
	}

	session := citizenSession(user)
	session.Role = role
	session.State = scope.State
	session.District = scope.District
	h.log.Info("admin signed in", zap.String("uid", user.UID), zap.String("role", string(role)))

	return h.respondWithToken(c, http.StatusOK, user, session)
}

// Logout revokes the caller's token until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	if err := h.revoked.Revoke(c.Request().Context(), session.TokenID, session.ExpiresAt); err != nil {
		return httpError(apperrors.Upstream(err, "revoke session"))
	}
	return ok(c, http.StatusOK, echo.Map{"loggedOut": true})
}

func (h *AuthHandler) checkPassword(c echo.Context, req models.SignInRequest) (*models.User, error) {
	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, httpError(err)
	}
	if user.Password == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "This account signs in with Firebase")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	return user, nil
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User, session models.Session) error {
	token, issued, err := h.tokens.Issue(session)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return ok(c, status, echo.Map{
		"token":   token,
		"session": issued,
		"user":    user,
	})
}

func citizenSession(user *models.User) models.Session {
	return models.Session{
		UserID:   user.UID,
		Name:     user.DisplayName,
		Email:    user.Email,
		Role:     models.RoleCitizen,
		State:    user.State,
		District: user.District,
	}
}
