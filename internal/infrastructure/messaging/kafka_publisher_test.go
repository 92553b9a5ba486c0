package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clinic-workflow/config"
	"clinic-workflow/internal/domain/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishStatusChangedKeysByRequest(t *testing.T) {
	writer := &fakeWriter{}
	pub := newKafkaPublisher(writer, logrus.New())

	event := entity.StatusChangedEvent{
		RequestID:   42,
		ServiceType: entity.ServiceTypeLab,
		From:        entity.ServiceRequestStatusPending,
		To:          entity.ServiceRequestStatusSecretaryConfirmed,
		Actor:       "sec@clinic.test",
		At:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, pub.PublishStatusChanged(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))

	var decoded entity.StatusChangedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestPublishStatusChangedWrapsWriterError(t *testing.T) {
	writer := new(mockWriter)
	cause := errors.New("broker down")
	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && string(msgs[0].Key) == "7"
	})).Return(cause).Once()
	pub := newKafkaPublisher(writer, logrus.New())

	err := pub.PublishStatusChanged(context.Background(), entity.StatusChangedEvent{RequestID: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "request 7")
	writer.AssertExpectations(t)
}

func TestNewEventPublisherWithoutBrokersIsNoop(t *testing.T) {
	pub := NewEventPublisher(config.KafkaConfig{}, logrus.New())
	assert.NoError(t, pub.PublishStatusChanged(context.Background(), entity.StatusChangedEvent{}))
	assert.NoError(t, pub.Close())
}
