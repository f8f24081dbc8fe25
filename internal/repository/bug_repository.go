package repository

import (
	"context"

	"github.com/spec-kit/bug-service/internal/domain"
)

// BugRepository encapsulates bug persistence.
type BugRepository interface {
	// GetForUpdate reads the bug and locks its row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Bug, error)
	UpdateStatusAndResolution(ctx context.Context, id string, status domain.BugStatus, resolution domain.BugResolution) error
	UpdateAssignee(ctx context.Context, id string, assignee *string) error
}

type bugRepository struct {
	db DBTX
}

// NewBugRepository instantiates repository.
func NewBugRepository(db DBTX) BugRepository {
	return &bugRepository{db: db}
}

const selectBugForUpdate = `
        SELECT id, project_id, account_id, name, status, resolution, assignee, created_at, updated_at
        FROM bugs WHERE id=$1
        FOR UPDATE`

func (r *bugRepository) GetForUpdate(ctx context.Context, id string) (*domain.Bug, error) {
	return r.fetchSingle(ctx, selectBugForUpdate, id)
}

func (r *bugRepository) UpdateStatusAndResolution(ctx context.Context, id string, status domain.BugStatus, resolution domain.BugResolution) error {
	const query = `UPDATE bugs SET status=$1, resolution=$2, updated_at=NOW() WHERE id=$3`
	return r.execOne(ctx, query, status, resolution, id)
}

func (r *bugRepository) UpdateAssignee(ctx context.Context, id string, assignee *string) error {
	const query = `UPDATE bugs SET assignee=$1, updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, assignee, id)
}

func (r *bugRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bugRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Bug, error) {
	var bug domain.Bug
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&bug.ID,
		&bug.ProjectID,
		&bug.AccountID,
		&bug.Name,
		&bug.Status,
		&bug.Resolution,
		&bug.AssigneeID,
		&bug.CreatedAt,
		&bug.UpdatedAt,
	); err != nil {
		return nil, notFoundOr(err)
	}
	return &bug, nil
}
