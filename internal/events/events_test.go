package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventEnvelope(t *testing.T) {
	event := NewEvent(EventTestPublished, map[string]uint{"test_id": 7})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventTestPublished, event.Type)
	assert.Equal(t, "exam-service", event.Source)
	assert.Equal(t, "1.0", event.Version)
	assert.False(t, event.Timestamp.IsZero())
}

func TestGoChannelPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewGoChannelEventPublisher("exam-events", logger)

	err := publisher.Publish(context.Background(), NewEvent(EventStudentCreated, map[string]string{"email": "asha@example.com"}))
	require.NoError(t, err)

	assert.NoError(t, publisher.Close())
}

func TestMockPublisherRecordsEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := NewMockEventPublisher(logger)

	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventStaffCreated, nil)))
	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventTestCompleted, nil)))

	published := mock.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, EventStaffCreated, published[0].Type)
	assert.Equal(t, EventTestCompleted, published[1].Type)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}
