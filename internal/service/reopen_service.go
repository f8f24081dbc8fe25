package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-service/internal/domain"
	"github.com/spec-kit/bug-service/internal/events"
	"github.com/spec-kit/bug-service/internal/repository"
	apperrors "github.com/spec-kit/bug-service/pkg/util/errorutil"
)

// CommentSanitizer cleans comment markup before it is stored.
type CommentSanitizer interface {
	Sanitize(raw string) (string, error)
}

// ReopenRequest is the already form-validated reopen input.
type ReopenRequest struct {
	AffectedVersionIDs []string
	CommentBody        string
	// AssigneeID changes the assignee when non-nil; an empty value clears it.
	AssigneeID *string
}

// ReopenResult is the committed state after a reopen.
type ReopenResult struct {
	Bug                *domain.Bug
	AffectedVersionIDs []string
	Comment            *domain.Comment
	// AlreadyReopened is set when the bug was in ReOpen before this call.
	AlreadyReopened bool
}

// ReopenDependencies bundles collaborators for the reopen workflow.
type ReopenDependencies struct {
	Transactor repository.Transactor
	Dispatcher events.Dispatcher
	Sanitizer  CommentSanitizer
	Logger     *zap.Logger
	Now        func() time.Time
}

// ReopenWorkflow moves a resolved or closed bug back to ReOpen and cleans up its relations.
type ReopenWorkflow struct {
	tx         repository.Transactor
	dispatcher events.Dispatcher
	sanitizer  CommentSanitizer
	logger     *zap.Logger
	now        func() time.Time
}

// NewReopenWorkflow constructs the workflow.
func NewReopenWorkflow(deps ReopenDependencies) *ReopenWorkflow {
	w := &ReopenWorkflow{
		tx:         deps.Transactor,
		dispatcher: deps.Dispatcher,
		sanitizer:  deps.Sanitizer,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Execute reopens the bug. All store mutations happen in one transaction; the ticket_changed
// event is published once after commit and a publication failure is only logged.
func (w *ReopenWorkflow) Execute(ctx context.Context, ticketID string, actor domain.Actor, req ReopenRequest) (*ReopenResult, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}
	if strings.TrimSpace(actor.Username) == "" {
		return nil, apperrors.NewValidationError("actor required", nil)
	}
	versionIDs, err := normalizeVersionIDs(req.AffectedVersionIDs)
	if err != nil {
		return nil, err
	}
	body, err := w.sanitizeComment(req.CommentBody)
	if err != nil {
		return nil, err
	}

	var result *ReopenResult
	err = w.tx.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		res, err := w.apply(ctx, stores, ticketID, actor, versionIDs, body, req.AssigneeID)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, w.classify(ticketID, err)
	}

	w.logger.Info("bug reopened",
		zap.String("ticket_id", ticketID),
		zap.String("actor", actor.Username),
		zap.Strings("affected_versions", versionIDs),
		zap.Bool("comment", result.Comment != nil),
		zap.Bool("already_reopened", result.AlreadyReopened))

	w.publishChanged(ctx, ticketID, actor)
	return result, nil
}

func (w *ReopenWorkflow) apply(ctx context.Context, stores repository.Stores, ticketID string, actor domain.Actor, versionIDs []string, body string, assignee *string) (*ReopenResult, error) {
	bug, err := stores.Bugs.GetForUpdate(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("bug", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	oldStatus, oldResolution := bug.Status, bug.Resolution
	oldAssignee := bug.AssigneeID
	wasReopened := bug.IsReopened()

	if err := stores.Bugs.UpdateStatusAndResolution(ctx, bug.ID, domain.BugStatusReOpened, domain.BugResolutionNone); err != nil {
		return nil, err
	}
	bug.Status = domain.BugStatusReOpened
	bug.Resolution = domain.BugResolutionNone

	if assignee != nil {
		next := normalizeAssignee(*assignee)
		if err := stores.Bugs.UpdateAssignee(ctx, bug.ID, next); err != nil {
			return nil, err
		}
		bug.AssigneeID = next
	}

	if err := stores.Relations.ReplaceRelations(ctx, bug.ID, domain.TicketTypeBug, domain.RelationAffectedVersion, versionIDs); err != nil {
		return nil, err
	}
	if err := stores.Relations.ReplaceRelations(ctx, bug.ID, domain.TicketTypeBug, domain.RelationFixedVersion, nil); err != nil {
		return nil, err
	}
	if err := stores.Relations.DeleteRelationsByType(ctx, bug.ID, domain.TicketTypeBug, domain.RelationDuplicated); err != nil {
		return nil, err
	}

	now := w.now()
	var comment *domain.Comment
	if body != "" {
		comment = &domain.Comment{
			ID:         uuid.NewString(),
			TicketID:   bug.ID,
			TicketType: domain.TicketTypeBug,
			ProjectID:  bug.ProjectID,
			Body:       body,
			Author:     actor.Username,
			CreatedAt:  now,
			AccountID:  bug.AccountID,
		}
		if err := stores.Comments.Insert(ctx, comment); err != nil {
			return nil, err
		}
	}

	if stores.History != nil {
		entries := []*domain.TicketHistory{w.historyEntry(bug, actor, domain.ChangeTypeStatus, now,
			map[string]any{"status": string(oldStatus), "resolution": string(oldResolution)},
			map[string]any{"status": string(bug.Status), "resolution": string(bug.Resolution)},
		)}
		if assignee != nil {
			entries = append(entries, w.historyEntry(bug, actor, domain.ChangeTypeAssignee, now,
				map[string]any{"assignee": assigneeValue(oldAssignee)},
				map[string]any{"assignee": assigneeValue(bug.AssigneeID)},
			))
		}
		for _, entry := range entries {
			if err := stores.History.Create(ctx, entry); err != nil {
				return nil, err
			}
		}
	}

	return &ReopenResult{Bug: bug, AffectedVersionIDs: versionIDs, Comment: comment, AlreadyReopened: wasReopened}, nil
}

func (w *ReopenWorkflow) historyEntry(bug *domain.Bug, actor domain.Actor, change domain.TicketChangeType, at time.Time, oldValue, newValue map[string]any) *domain.TicketHistory {
	return &domain.TicketHistory{
		ID:         uuid.NewString(),
		TicketID:   bug.ID,
		TicketType: domain.TicketTypeBug,
		ChangedBy:  actor.Username,
		ChangeType: change,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  at,
	}
}

func (w *ReopenWorkflow) sanitizeComment(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if w.sanitizer == nil {
		return "", apperrors.NewSanitizationError("no sanitizer configured", nil)
	}
	return w.sanitizer.Sanitize(raw)
}

func (w *ReopenWorkflow) classify(ticketID string, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	w.logger.Error("reopen rolled back", zap.String("ticket_id", ticketID), zap.Error(err))
	return apperrors.NewPersistenceError("reopen", err)
}

func (w *ReopenWorkflow) publishChanged(ctx context.Context, ticketID string, actor domain.Actor) {
	if w.dispatcher == nil {
		return
	}
	event := events.TicketChanged(ticketID, domain.TicketTypeBug, events.SourceReopenWorkflow, actor)
	event.ID = uuid.NewString()
	event.Timestamp = w.now()
	if err := w.dispatcher.Publish(ctx, event); err != nil {
		notifyErr := apperrors.NewNotificationError(err)
		w.logger.Warn("ticket changed notification failed",
			zap.String("code", apperrors.CodeNotification),
			zap.String("ticket_id", ticketID),
			zap.String("event_id", event.ID),
			zap.Error(notifyErr))
	}
}

// normalizeVersionIDs trims ids and drops duplicates, keeping first-seen order.
func normalizeVersionIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperrors.NewValidationError("affected version id must not be blank", map[string]any{"index": i})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func normalizeAssignee(assignee string) *string {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil
	}
	return &assignee
}

// assigneeValue renders an unassigned bug as nil in history payloads.
func assigneeValue(assignee *string) any {
	if assignee == nil {
		return nil
	}
	return *assignee
}
