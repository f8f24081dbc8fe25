package domain

import "time"

// TicketType discriminates the kind of ticket a relation or comment is attached to.
type TicketType string

const (
	TicketTypeBug     TicketType = "Project-Bug"
	TicketTypeVersion TicketType = "Project-Version"
)

// BugStatus enumerates lifecycle states for bugs.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "Open"
	BugStatusInProgress BugStatus = "InProgress"
	BugStatusResolved   BugStatus = "Resolved"
	BugStatusVerified   BugStatus = "Verified"
	BugStatusClosed     BugStatus = "Closed"
	BugStatusReOpened   BugStatus = "ReOpen"
	BugStatusWontFix    BugStatus = "WontFix"
)

// BugResolution classifies how a bug was resolved.
type BugResolution string

const (
	BugResolutionNone            BugResolution = "None"
	BugResolutionFixed           BugResolution = "Fixed"
	BugResolutionWontFix         BugResolution = "WontFix"
	BugResolutionDuplicate       BugResolution = "Duplicate"
	BugResolutionCannotReproduce BugResolution = "CannotReproduce"
	BugResolutionIncomplete      BugResolution = "Incomplete"
	BugResolutionInvalid         BugResolution = "Invalid"
	BugResolutionNewIssue        BugResolution = "Newissue"
)

// Bug is the aggregate for defect tickets.
type Bug struct {
	ID         string
	ProjectID  string
	AccountID  int64
	Name       string
	Status     BugStatus
	Resolution BugResolution
	AssigneeID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsReopened reports whether the bug already sits in the reopened state.
func (b Bug) IsReopened() bool {
	return b.Status == BugStatusReOpened
}
