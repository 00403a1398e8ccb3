package models

import "time"

// Complaint statuses.
const (
	ComplaintOpen     = "open"
	ComplaintResolved = "resolved"
)

// Complaint is a maintenance or facility complaint raised by a student.
type Complaint struct {
	ID          string    `json:"_id"`
	StudentID   string    `json:"studentId"`
	Hostel      string    `json:"hostel,omitempty"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	ResolvedBy  string    `json:"resolvedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Visitor is a gate-registered visitor entry.
type Visitor struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	VisitingID  string     `json:"visitingId"`
	Hostel      string     `json:"hostel,omitempty"`
	Purpose     string     `json:"purpose,omitempty"`
	CheckedInAt time.Time  `json:"checkedInAt"`
	CheckedOut  *time.Time `json:"checkedOutAt,omitempty"`
	EnteredBy   string     `json:"enteredBy,omitempty"`
}
