// Package memory provides a process-local implementation of the repository contracts.
// Every transaction works on a private copy of the data that replaces the shared state
// only on commit, so readers never observe a partially applied unit of work.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/bug-service/internal/domain"
	"github.com/spec-kit/bug-service/internal/repository"
)

// Store is an in-memory repository.Transactor.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	bugs      map[string]domain.Bug
	relations []domain.TicketRelation
	comments  []domain.Comment
	history   []domain.TicketHistory
}

var _ repository.Transactor = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: &state{bugs: make(map[string]domain.Bug)}}
}

// WithinTx serializes transactions; fn sees a snapshot that is published only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, storesFor(work)); err != nil {
		return err
	}
	s.state = work
	return nil
}

// SeedBug inserts or overwrites a bug outside any transaction.
func (s *Store) SeedBug(bug domain.Bug) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.bugs[bug.ID] = cloneBug(bug)
}

// SeedRelation adds a relation outside any transaction.
func (s *Store) SeedRelation(rel domain.TicketRelation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.relations = append(s.state.relations, rel)
}

// Bug returns the committed copy of a bug.
func (s *Store) Bug(id string) (domain.Bug, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bug, ok := s.state.bugs[id]
	return cloneBug(bug), ok
}

// RelationTargets returns the committed target ids of (ticket, rel), sorted.
func (s *Store) RelationTargets(ticketID string, ticketType domain.TicketType, rel domain.RelationType) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	targets := []string{}
	for _, r := range s.state.selectRelations(ticketID, ticketType, rel) {
		targets = append(targets, r.TargetID)
	}
	sort.Strings(targets)
	return targets
}

// Comments returns the committed comments of a ticket in insertion order.
func (s *Store) Comments(ticketID string, ticketType domain.TicketType) []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.selectComments(ticketID, ticketType)
}

// History returns the committed history entries of a ticket in insertion order.
func (s *Store) History(ticketID string, ticketType domain.TicketType) []domain.TicketHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.selectHistory(ticketID, ticketType)
}

func (st *state) clone() *state {
	out := &state{
		bugs:      make(map[string]domain.Bug, len(st.bugs)),
		relations: append([]domain.TicketRelation(nil), st.relations...),
		comments:  append([]domain.Comment(nil), st.comments...),
		history:   append([]domain.TicketHistory(nil), st.history...),
	}
	for id, bug := range st.bugs {
		out.bugs[id] = cloneBug(bug)
	}
	return out
}

func (st *state) selectRelations(ticketID string, ticketType domain.TicketType, rel domain.RelationType) []domain.TicketRelation {
	var out []domain.TicketRelation
	for _, r := range st.relations {
		if r.TicketID == ticketID && r.TicketType == ticketType && r.Rel == rel {
			out = append(out, r)
		}
	}
	return out
}

func (st *state) selectComments(ticketID string, ticketType domain.TicketType) []domain.Comment {
	var out []domain.Comment
	for _, c := range st.comments {
		if c.TicketID == ticketID && c.TicketType == ticketType {
			out = append(out, c)
		}
	}
	return out
}

func (st *state) selectHistory(ticketID string, ticketType domain.TicketType) []domain.TicketHistory {
	var out []domain.TicketHistory
	for _, h := range st.history {
		if h.TicketID == ticketID && h.TicketType == ticketType {
			out = append(out, h)
		}
	}
	return out
}

func cloneBug(bug domain.Bug) domain.Bug {
	if bug.AssigneeID != nil {
		assignee := *bug.AssigneeID
		bug.AssigneeID = &assignee
	}
	return bug
}
