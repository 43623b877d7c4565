package handlers

import (
	"net/http"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const profileImageFolder = "profiles"

// UserHandler handles HTTP requests related to the caller's profile
type UserHandler struct {
	userRepository repositories.UserRepository
	images         services.ImageHost
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, images services.ImageHost) *UserHandler {
	return &UserHandler{userRepository: userRepo, images: images}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/me", h.GetProfile)
	g.PUT("/me", h.UpdateProfile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUID(c.Request().Context(), session.UserID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": user, "session": session})
}

// UpdateProfile updates the authenticated user's profile. A "photo" file in a
// multipart body replaces the profile picture.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	photos, err := readImages(c, "photo", 1)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByUID(ctx, session.UserID)
	if err != nil {
		return httpError(err)
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.State != "" {
		user.State = req.State
	}
	if req.District != "" {
		user.District = req.District
	}
	if len(photos) == 1 {
		if h.images == nil {
			return httpError(apperrors.Upstream(errNoImageHost, "upload photo"))
		}
		url, err := h.images.Upload(ctx, profileImageFolder, photos[0].Filename, photos[0].ContentType, photos[0].Data)
		if err != nil {
			return httpError(apperrors.Upstream(err, "upload photo"))
		}
		user.PhotoURL = url
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": user})
}
