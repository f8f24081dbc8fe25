package dto

import (
	"time"

	"github.com/spec-kit/bug-service/internal/domain"
)

// ReopenBugRequest payload.
type ReopenBugRequest struct {
	AffectedVersionIDs []string `json:"affected_version_ids"`
	Comment            string   `json:"comment"`
	Assignee           *string  `json:"assignee,omitempty"`
}

// BugResponse describes the bug after a change.
type BugResponse struct {
	ID         string               `json:"id"`
	ProjectID  string               `json:"project_id"`
	Name       string               `json:"name"`
	Status     domain.BugStatus     `json:"status"`
	Resolution domain.BugResolution `json:"resolution"`
	Assignee   *string              `json:"assignee"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// CommentResponse represents a stored comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	// Body is sanitized HTML; text is already entity-escaped.
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// ReopenBugResponse is returned by the reopen endpoint.
type ReopenBugResponse struct {
	Bug                BugResponse      `json:"bug"`
	AffectedVersionIDs []string         `json:"affected_version_ids"`
	Comment            *CommentResponse `json:"comment,omitempty"`
}
