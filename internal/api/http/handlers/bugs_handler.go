package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bug-service/internal/api/dto"
	"github.com/spec-kit/bug-service/internal/auth"
	"github.com/spec-kit/bug-service/internal/domain"
	"github.com/spec-kit/bug-service/internal/service"
	apperrors "github.com/spec-kit/bug-service/pkg/util/errorutil"
)

const maxAffectedVersions = 200

// Reopener executes the reopen workflow.
type Reopener interface {
	Execute(ctx context.Context, ticketID string, actor domain.Actor, req service.ReopenRequest) (*service.ReopenResult, error)
}

// BugsHandler manages bug endpoints.
type BugsHandler struct {
	reopen Reopener
}

// NewBugsHandler constructs handler.
func NewBugsHandler(reopen Reopener) *BugsHandler {
	return &BugsHandler{reopen: reopen}
}

// Reopen POST /bugs/:id/reopen.
func (h *BugsHandler) Reopen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.ReopenBugRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateReopen(req); err != nil {
		return err
	}

	result, err := h.reopen.Execute(c.UserContext(), c.Params("id"), principal.Actor, service.ReopenRequest{
		AffectedVersionIDs: req.AffectedVersionIDs,
		CommentBody:        req.Comment,
		AssigneeID:         req.Assignee,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reopenResponse(result)})
}

func validateReopen(req dto.ReopenBugRequest) error {
	if len(req.AffectedVersionIDs) > maxAffectedVersions {
		return apperrors.NewValidationError("too many affected versions", map[string]any{"max": maxAffectedVersions})
	}
	for i, id := range req.AffectedVersionIDs {
		if strings.TrimSpace(id) == "" {
			return apperrors.NewValidationError("affected_version_ids must not contain blank ids", map[string]any{"index": i})
		}
	}
	return nil
}

func reopenResponse(result *service.ReopenResult) dto.ReopenBugResponse {
	bug := result.Bug
	resp := dto.ReopenBugResponse{
		Bug: dto.BugResponse{
			ID:         bug.ID,
			ProjectID:  bug.ProjectID,
			Name:       bug.Name,
			Status:     bug.Status,
			Resolution: bug.Resolution,
			Assignee:   bug.AssigneeID,
			UpdatedAt:  bug.UpdatedAt,
		},
		AffectedVersionIDs: result.AffectedVersionIDs,
	}
	if result.Comment != nil {
		resp.Comment = &dto.CommentResponse{
			ID:        result.Comment.ID,
			Body:      result.Comment.Body,
			Author:    result.Comment.Author,
			CreatedAt: result.Comment.CreatedAt,
		}
	}
	return resp
}
