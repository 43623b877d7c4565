package models

import (
	"time"
)

// Collections an issue can live in. Reports with a known reporter go to
// profiledIssues; everything else is anonymous.
const (
	ProfiledIssues  = "profiledIssues"
	AnonymousIssues = "anonymousIssues"
)

// IssueCollections is the lookup order used when only an issue id is known.
var IssueCollections = []string{ProfiledIssues, AnonymousIssues}

// IssueStatus tracks resolution progress.
type IssueStatus string

const (
	StatusPending        IssueStatus = "Pending"
	StatusConfirmation   IssueStatus = "Confirmation"
	StatusAcknowledgment IssueStatus = "Acknowledgment"
	StatusResolution     IssueStatus = "Resolution"
)

// IssueStatuses lists the workflow states in order.
var IssueStatuses = []IssueStatus{StatusPending, StatusConfirmation, StatusAcknowledgment, StatusResolution}

func (s IssueStatus) Valid() bool {
	for _, v := range IssueStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Open reports whether the issue still awaits resolution.
func (s IssueStatus) Open() bool {
	return s.Valid() && s != StatusResolution
}

type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat" firestore:"lat"`
	Lng float64 `json:"lng" bson:"lng" firestore:"lng"`
}

// Issue is a citizen-submitted civic problem report.
type Issue struct {
	ID         string `json:"id" bson:"_id,omitempty" firestore:"-"`
	Collection string `json:"-" bson:"-" firestore:"-"`

	ReporterID    string `json:"reporterId,omitempty" bson:"reporterId,omitempty" firestore:"reporterId,omitempty"`
	ReporterName  string `json:"reporterName,omitempty" bson:"reporterName,omitempty" firestore:"reporterName,omitempty"`
	ReporterEmail string `json:"reporterEmail,omitempty" bson:"reporterEmail,omitempty" firestore:"reporterEmail,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty" firestore:"avatarUrl,omitempty"`

	Title       string      `json:"title" bson:"title" firestore:"title"`
	Description string      `json:"description" bson:"description" firestore:"description"`
	Category    string      `json:"category" bson:"category" firestore:"category"`
	State       string      `json:"state" bson:"state" firestore:"state"`
	District    string      `json:"district" bson:"district" firestore:"district"`
	Address     string      `json:"address" bson:"address" firestore:"address"`
	Location    *GeoPoint   `json:"location,omitempty" bson:"location,omitempty" firestore:"location,omitempty"`
	Status      IssueStatus `json:"status" bson:"status" firestore:"status"`
	VoteCount   int64       `json:"votes" bson:"votes" firestore:"votes"`
	ImageURLs   []string    `json:"imageUrls" bson:"imageUrls" firestore:"imageUrls"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// IssueRef locates an issue document.
type IssueRef struct {
	Collection string
	ID         string
}

func (i *Issue) Ref() IssueRef {
	return IssueRef{Collection: i.Collection, ID: i.ID}
}

// Anonymous reports have no reporter to notify.
func (i *Issue) Anonymous() bool {
	return i.ReporterID == ""
}

// Sort orders for issue listings.
const (
	SortNewest = "newest"
	SortVotes  = "votes"
)

// IssueFilter holds the equality filters supported by issue listings.
// Empty fields match everything.
type IssueFilter struct {
	State      string
	District   string
	Category   string
	Status     IssueStatus
	Statuses   []IssueStatus // any of; ignored when Status is set
	ReporterID string
	Sort       string
	Limit      int64
}

// LocationFilter scopes dashboards to a state and optionally a district.
type LocationFilter struct {
	State    string `json:"state,omitempty" query:"state"`
	District string `json:"district,omitempty" query:"district"`
}

// CreateIssueRequest is the body of an issue report. Images arrive as multipart files.
type CreateIssueRequest struct {
	Title         string   `json:"title" form:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" form:"description" validate:"required,min=10,max=2000"`
	Category      string   `json:"category" form:"category" validate:"required,max=60"`
	State         string   `json:"state" form:"state" validate:"required,max=100"`
	District      string   `json:"district" form:"district" validate:"required,max=100"`
	StreetAddress string   `json:"streetAddress" form:"streetAddress" validate:"required,max=200"`
	CityInfo      string   `json:"cityInfo" form:"cityInfo" validate:"required,max=200"`
	Latitude      *float64 `json:"latitude,omitempty" form:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" form:"longitude" validate:"omitempty,longitude"`
	ReportType    string   `json:"reportType" form:"reportType" validate:"required,report_type"`
}

// UpdateStatusRequest is the body an admin sends to move an issue.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,issue_status"`
}

// DescribeIssueRequest asks for a draft description.
type DescribeIssueRequest struct {
	Category string `json:"category" validate:"required,max=60"`
}
