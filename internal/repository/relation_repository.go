package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/bug-service/internal/domain"
)

// RelationRepository manages typed relations owned by a ticket.
type RelationRepository interface {
	// ReplaceRelations makes targetIDs the complete set for (ticket, rel). An empty set clears it.
	ReplaceRelations(ctx context.Context, ticketID string, ticketType domain.TicketType, rel domain.RelationType, targetIDs []string) error
	DeleteRelationsByType(ctx context.Context, ticketID string, ticketType domain.TicketType, rel domain.RelationType) error
}

type relationRepository struct {
	db DBTX
}

// NewRelationRepository builds repository.
func NewRelationRepository(db DBTX) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) ReplaceRelations(ctx context.Context, ticketID string, ticketType domain.TicketType, rel domain.RelationType, targetIDs []string) error {
	if err := r.DeleteRelationsByType(ctx, ticketID, ticketType, rel); err != nil {
		return err
	}
	if len(targetIDs) == 0 {
		return nil
	}
	query, args := insertRelationsQuery(ticketID, ticketType, rel, targetIDs)
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *relationRepository) DeleteRelationsByType(ctx context.Context, ticketID string, ticketType domain.TicketType, rel domain.RelationType) error {
	const query = `DELETE FROM ticket_relations WHERE ticket_id=$1 AND ticket_type=$2 AND rel=$3`
	_, err := r.db.Exec(ctx, query, ticketID, ticketType, rel)
	return err
}

// insertRelationsQuery builds one multi-row insert. $1..$4 carry the shared ticket id, ticket type,
// target type and relation; each target id takes the next placeholder from $5 on.
func insertRelationsQuery(ticketID string, ticketType domain.TicketType, rel domain.RelationType, targetIDs []string) (string, []any) {
	args := []any{ticketID, ticketType, domain.TargetTypeFor(rel), rel}
	values := make([]string, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		args = append(args, targetID)
		values = append(values, fmt.Sprintf("($1,$2,$%d,$3,$4)", len(args)))
	}
	query := fmt.Sprintf(`
        INSERT INTO ticket_relations (ticket_id, ticket_type, target_id, target_type, rel)
        VALUES %s
        ON CONFLICT DO NOTHING`, strings.Join(values, ","))
	return query, args
}
