package repository

import (
	"context"

	"github.com/spec-kit/bug-service/internal/domain"
)

// CommentRepository stores audit comments. Comments are append-only.
type CommentRepository interface {
	Insert(ctx context.Context, comment *domain.Comment) error
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Insert(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (id, ticket_id, ticket_type, project_id, body, author, account_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.TicketType,
		comment.ProjectID,
		comment.Body,
		comment.Author,
		comment.AccountID,
		comment.CreatedAt,
	)
	return err
}
