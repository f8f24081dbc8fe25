package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-service/internal/config"
	"github.com/spec-kit/bug-service/internal/domain"
	"github.com/spec-kit/bug-service/internal/events"
)

type recordingBroadcaster struct {
	channel  string
	payloads [][]byte
	err      error
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, channel string, payload []byte) error {
	r.channel = channel
	r.payloads = append(r.payloads, payload)
	return r.err
}

func TestNotificationServiceBroadcastsTicketChanged(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	broadcaster := &recordingBroadcaster{}
	svc := NewNotificationService(dispatcher, broadcaster, zap.NewNop(), config.NotificationConfig{RedisChannel: "ticket-events"})
	svc.RegisterHandlers()

	event := events.TicketChanged("B-1", domain.TicketTypeBug, events.SourceReopenWorkflow, alice)
	event.ID = "evt-1"
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	assert.Equal(t, "ticket-events", broadcaster.channel)
	require.Len(t, broadcaster.payloads, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(broadcaster.payloads[0], &decoded))
	assert.Equal(t, "ticket_changed", decoded["type"])
	assert.Equal(t, "B-1", decoded["ticket_id"])
	assert.Equal(t, "reopen_workflow", decoded["source"])
}

func TestNotificationServiceReportsBroadcastFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	down := errors.New("redis down")
	svc := NewNotificationService(dispatcher, &recordingBroadcaster{err: down}, zap.NewNop(), config.NotificationConfig{RedisChannel: "ticket-events"})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketChanged, TicketID: "B-1"})
	assert.ErrorIs(t, err, down)
}

func TestNotificationServiceWithoutBroadcaster(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, nil, zap.NewNop(), config.NotificationConfig{
		EmailFrom:    "noreply@example.com",
		WebhookURL:   "https://hooks.example.com/bugs",
		RedisChannel: "ticket-events",
	})
	svc.RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketChanged, TicketID: "B-1"}))
}

type stalledBroadcaster struct{}

func (stalledBroadcaster) Broadcast(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotificationServiceBoundsBroadcastWait(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, stalledBroadcaster{}, zap.NewNop(), config.NotificationConfig{
		RedisChannel:           "ticket-events",
		BroadcastTimeoutMillis: 20,
	})
	svc.RegisterHandlers()

	start := time.Now()
	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketChanged, TicketID: "B-1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
