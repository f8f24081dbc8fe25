package memory

import (
	"context"
	"time"

	"github.com/spec-kit/bug-service/internal/domain"
	"github.com/spec-kit/bug-service/internal/repository"
)

func storesFor(st *state) repository.Stores {
	return repository.Stores{
		Bugs:      &bugRepository{st: st},
		Relations: &relationRepository{st: st},
		Comments:  &commentRepository{st: st},
		History:   &historyRepository{st: st},
	}
}

type bugRepository struct {
	st *state
}

// GetForUpdate needs no extra locking: the store mutex is held for the whole transaction.
func (r *bugRepository) GetForUpdate(_ context.Context, id string) (*domain.Bug, error) {
	bug, ok := r.st.bugs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneBug(bug)
	return &out, nil
}

func (r *bugRepository) UpdateStatusAndResolution(_ context.Context, id string, status domain.BugStatus, resolution domain.BugResolution) error {
	bug, ok := r.st.bugs[id]
	if !ok {
		return repository.ErrNotFound
	}
	bug.Status = status
	bug.Resolution = resolution
	bug.UpdatedAt = time.Now()
	r.st.bugs[id] = bug
	return nil
}

func (r *bugRepository) UpdateAssignee(_ context.Context, id string, assignee *string) error {
	bug, ok := r.st.bugs[id]
	if !ok {
		return repository.ErrNotFound
	}
	bug.AssigneeID = nil
	if assignee != nil {
		v := *assignee
		bug.AssigneeID = &v
	}
	bug.UpdatedAt = time.Now()
	r.st.bugs[id] = bug
	return nil
}

type relationRepository struct {
	st *state
}

func (r *relationRepository) ReplaceRelations(ctx context.Context, ticketID string, ticketType domain.TicketType, rel domain.RelationType, targetIDs []string) error {
	if err := r.DeleteRelationsByType(ctx, ticketID, ticketType, rel); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(targetIDs))
	for _, targetID := range targetIDs {
		if _, dup := seen[targetID]; dup {
			continue
		}
		seen[targetID] = struct{}{}
		r.st.relations = append(r.st.relations, domain.TicketRelation{
			TicketID:   ticketID,
			TicketType: ticketType,
			TargetID:   targetID,
			TargetType: domain.TargetTypeFor(rel),
			Rel:        rel,
		})
	}
	return nil
}

func (r *relationRepository) DeleteRelationsByType(_ context.Context, ticketID string, ticketType domain.TicketType, rel domain.RelationType) error {
	kept := r.st.relations[:0:0]
	for _, existing := range r.st.relations {
		if existing.TicketID == ticketID && existing.TicketType == ticketType && existing.Rel == rel {
			continue
		}
		kept = append(kept, existing)
	}
	r.st.relations = kept
	return nil
}

type commentRepository struct {
	st *state
}

func (r *commentRepository) Insert(_ context.Context, comment *domain.Comment) error {
	r.st.comments = append(r.st.comments, *comment)
	return nil
}

type historyRepository struct {
	st *state
}

func (r *historyRepository) Create(_ context.Context, history *domain.TicketHistory) error {
	r.st.history = append(r.st.history, *history)
	return nil
}
