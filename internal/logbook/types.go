package logbook

import (
	"time"
)

// Date and time layouts stored for every log.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Owner summarises the parent account that owns a log.
type Owner struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedOn time.Time `json:"created_on"`
}

// Entry holds the fields shared by every log type.
type Entry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Notes     *string   `json:"notes"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
	OwnerID   string    `json:"owner_id"`
	Owner     Owner     `json:"owner"`
}

// EntryInput holds the client-supplied fields shared by every log type.
// Date and Time default to the current server time on create and are left
// unchanged on update when omitted.
type EntryInput struct {
	Date  string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time  string  `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Notes *string `json:"notes" validate:"omitempty,max=1000"`
}

// Bottle is a feeding log.
type Bottle struct {
	Entry
	Amount int    `json:"amount"`
	Brand  string `json:"brand"`
}

// BottleInput is the create and update body for a bottle log.
// It has no owner field.
type BottleInput struct {
	EntryInput
	Amount *int   `json:"amount" validate:"required,gte=0,lte=5000"`
	Brand  string `json:"brand" validate:"required,max=100"`
}

// Diaper is a diaper-change log.
type Diaper struct {
	Entry
	SoilType string `json:"soil_type"`
}

// DiaperInput is the create and update body for a diaper log.
// It has no owner field.
type DiaperInput struct {
	EntryInput
	SoilType string `json:"soil_type" validate:"required,max=50"`
}

// Action names a change made to a log.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event describes a committed change. Record is *Bottle or *Diaper for
// created and updated events and nil for deletions.
type Event struct {
	Kind     string
	Action   Action
	OwnerID  string
	RecordID string
	Record   any
	At       time.Time
}

// ListOptions bounds and filters a list query.
type ListOptions struct {
	Limit  int
	Offset int
	// Search is a case-insensitive substring matched against the log
	// type's search column. Empty means no filter.
	Search string
}

// Paging defaults.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListResult is one page of logs owned by the caller.
type ListResult[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
}
