package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a citizen's profile. UID is the identity provider's stable id
// (a Firebase UID, or a generated one for local email/password accounts).
type User struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	UID         string    `json:"uid" gorm:"size:128;uniqueIndex"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	Password    string    `json:"-"` // bcrypt hash, empty for Firebase accounts
	PhotoURL    string    `json:"photoUrl,omitempty"`
	State       string    `json:"state,omitempty"`
	District    string    `json:"district,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserCompact is the public view embedded in other payloads.
type UserCompact struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{UID: u.UID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	State    string `json:"state,omitempty" validate:"omitempty,max=100"`
	District string `json:"district,omitempty" validate:"omitempty,max=100"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName,omitempty" form:"displayName" validate:"omitempty,min=2,max=50"`
	State       string `json:"state,omitempty" form:"state" validate:"omitempty,max=100"`
	District    string `json:"district,omitempty" form:"district" validate:"omitempty,max=100"`
}

// SessionClaims are the JWT claims behind a Session.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	jwt.RegisteredClaims
}
