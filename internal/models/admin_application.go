package models

import "time"

// ApplicationStatus is the state of a district-admin application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s == ApplicationApproved || s == ApplicationRejected
}

// AdminApplication is a user's request for district-admin privileges.
type AdminApplication struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    string            `json:"userId" gorm:"size:128;uniqueIndex"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	State     string            `json:"state" gorm:"index"`
	District  string            `json:"district" gorm:"index"`
	Role      Role              `json:"role" gorm:"size:20;default:admin"`
	Status    ApplicationStatus `json:"status" gorm:"size:20;index;default:pending"`
	CreatedAt time.Time         `json:"createdAt"`
	DecidedAt *time.Time        `json:"decidedAt,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type AdminApplicationRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	State    string `json:"state" validate:"required,max=100"`
	District string `json:"district" validate:"required,max=100"`
}

type DecisionRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}
