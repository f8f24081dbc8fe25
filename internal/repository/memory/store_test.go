package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bug-service/internal/domain"
	"github.com/spec-kit/bug-service/internal/repository"
)

func seededStore() *Store {
	s := NewStore()
	s.SeedBug(domain.Bug{ID: "B-1", ProjectID: "P-1", AccountID: 7, Status: domain.BugStatusResolved, Resolution: domain.BugResolutionFixed})
	s.SeedRelation(domain.TicketRelation{TicketID: "B-1", TicketType: domain.TicketTypeBug, TargetID: "v1", TargetType: domain.TicketTypeVersion, Rel: domain.RelationAffectedVersion})
	return s
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		if err := stores.Bugs.UpdateStatusAndResolution(ctx, "B-1", domain.BugStatusReOpened, domain.BugResolutionNone); err != nil {
			return err
		}
		return stores.Relations.ReplaceRelations(ctx, "B-1", domain.TicketTypeBug, domain.RelationAffectedVersion, []string{"v2", "v3", "v2"})
	})
	require.NoError(t, err)

	bug, ok := s.Bug("B-1")
	require.True(t, ok)
	assert.Equal(t, domain.BugStatusReOpened, bug.Status)
	assert.Equal(t, domain.BugResolutionNone, bug.Resolution)
	assert.Equal(t, []string{"v2", "v3"}, s.RelationTargets("B-1", domain.TicketTypeBug, domain.RelationAffectedVersion))
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		require.NoError(t, stores.Bugs.UpdateStatusAndResolution(ctx, "B-1", domain.BugStatusReOpened, domain.BugResolutionNone))
		require.NoError(t, stores.Relations.DeleteRelationsByType(ctx, "B-1", domain.TicketTypeBug, domain.RelationAffectedVersion))
		require.NoError(t, stores.Comments.Insert(ctx, &domain.Comment{ID: "c1", TicketID: "B-1", TicketType: domain.TicketTypeBug}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	bug, _ := s.Bug("B-1")
	assert.Equal(t, domain.BugStatusResolved, bug.Status)
	assert.Equal(t, domain.BugResolutionFixed, bug.Resolution)
	assert.Equal(t, []string{"v1"}, s.RelationTargets("B-1", domain.TicketTypeBug, domain.RelationAffectedVersion))
	assert.Empty(t, s.Comments("B-1", domain.TicketTypeBug))
}

func TestWithinTxHonorsCancelledContext(t *testing.T) {
	s := seededStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(context.Context, repository.Stores) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestBugRepositoryNotFound(t *testing.T) {
	s := NewStore()
	err := s.WithinTx(context.Background(), func(ctx context.Context, stores repository.Stores) error {
		_, err := stores.Bugs.GetForUpdate(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, stores.Bugs.UpdateStatusAndResolution(ctx, "missing", domain.BugStatusReOpened, domain.BugResolutionNone), repository.ErrNotFound)
		assert.ErrorIs(t, stores.Bugs.UpdateAssignee(ctx, "missing", nil), repository.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestSnapshotIsolatedFromCallerMutation(t *testing.T) {
	s := NewStore()
	assignee := "alice"
	s.SeedBug(domain.Bug{ID: "B-1", AssigneeID: &assignee})
	assignee = "mallory"

	bug, _ := s.Bug("B-1")
	require.NotNil(t, bug.AssigneeID)
	assert.Equal(t, "alice", *bug.AssigneeID)

	*bug.AssigneeID = "eve"
	again, _ := s.Bug("B-1")
	assert.Equal(t, "alice", *again.AssigneeID)
}

func TestConcurrentTransactionsAreSerialized(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
				return stores.Comments.Insert(ctx, &domain.Comment{TicketID: "B-1", TicketType: domain.TicketTypeBug})
			})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Comments("B-1", domain.TicketTypeBug), 20)
}
