// Package validators plugs go-playground/validator into echo, with the tags
// used by request models.
package validators

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator with issue_status, vote_direction and
// report_type registered.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("issue_status", func(fl validator.FieldLevel) bool {
		return models.IssueStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("vote_direction", func(fl validator.FieldLevel) bool {
		return models.VoteDirection(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("report_type", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "profiled" || s == "anonymous"
	})
	return &CustomValidator{validator: v}
}

// Validate returns a 400 listing each failed field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "issue_status":
		return fmt.Sprintf("%s must be one of Pending, Confirmation, Acknowledgment, Resolution", fe.Field())
	case "vote_direction":
		return fmt.Sprintf("%s must be up or down", fe.Field())
	case "report_type":
		return fmt.Sprintf("%s must be profiled or anonymous", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
