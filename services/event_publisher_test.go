package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"public-complaint-api/models"
	"public-complaint-api/services"
)

type publishedMessage struct {
	channel string
	payload []byte
}

type fakeRedis struct {
	err      error
	messages []publishedMessage
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.messages = append(f.messages, publishedMessage{channel: channel, payload: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

type fakeKafka struct {
	err      error
	messages []kafka.Message
}

func (f *fakeKafka) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func sampleComplaint() *models.Complaint {
	return &models.Complaint{
		ID:                 42,
		RegistrationNumber: "REG-20250310-K7Q2ZD",
		UserID:             7,
		ServiceID:          3,
		ApplicantName:      "Budi Santoso",
		Status:             models.StatusCompleted,
		Service:            &models.Service{ID: 3, Name: "Perizinan Usaha"},
	}
}

func TestRedisPublisherSendsNotificationToUserChannel(t *testing.T) {
	client := &fakeRedis{}
	pub := services.NewRedisNotificationPublisher(client)
	ev := services.ComplaintStatusChanged(sampleComplaint(), models.StatusPending, models.StatusCompleted)
	n := &models.Notification{
		ID:     "5b7c6f1e-8f0b-4c39-a0c4-3d5f5c0f4d11",
		Type:   ev.Kind,
		UserID: 7,
		Data:   datatypes.NewJSONType(ev.Payload()),
	}

	require.NoError(t, pub.Publish(context.Background(), ev, n))
	require.Len(t, client.messages, 1)
	assert.Equal(t, "notifications:7", client.messages[0].channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &decoded))
	assert.Equal(t, "ComplaintStatusChanged", decoded["type"])
	data := decoded["data"].(map[string]any)
	assert.Equal(t, "pending", data["old_status"])
	assert.Equal(t, "completed", data["new_status"])

	// nothing to publish when the in-app record was not stored
	require.NoError(t, pub.Publish(context.Background(), ev, nil))
	assert.Len(t, client.messages, 1)

	client.err = errors.New("connection refused")
	assert.Error(t, pub.Publish(context.Background(), ev, n))
}

func TestKafkaPublisherKeysByRegistrationNumber(t *testing.T) {
	writer := &fakeKafka{}
	pub := services.NewKafkaEventPublisher(writer)

	ev := services.ComplaintStatusChanged(sampleComplaint(), models.StatusPending, models.StatusCompleted)
	require.NoError(t, pub.Publish(context.Background(), ev, nil))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "REG-20250310-K7Q2ZD", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "complaint.status_changed", string(msg.Headers[0].Value))

	var body services.ComplaintEventMessage
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "complaint.status_changed", body.Event)
	assert.EqualValues(t, 42, body.ComplaintID)
	assert.Equal(t, "Perizinan Usaha", body.ServiceName)
	assert.Equal(t, models.StatusPending, body.OldStatus)
	assert.Equal(t, models.StatusCompleted, body.NewStatus)
	assert.False(t, body.OccurredAt.IsZero())

	writer.err = errors.New("leader not available")
	assert.Error(t, pub.Publish(context.Background(), services.ComplaintCreated(sampleComplaint()), nil))
}

func TestPublishersJoinErrors(t *testing.T) {
	redisClient := &fakeRedis{err: errors.New("redis down")}
	writer := &fakeKafka{}
	pubs := services.Publishers{
		services.NewRedisNotificationPublisher(redisClient),
		nil,
		services.NewKafkaEventPublisher(writer),
	}

	ev := services.ComplaintCreated(sampleComplaint())
	n := &models.Notification{ID: "n-1", UserID: 7, Data: datatypes.NewJSONType(ev.Payload())}
	err := pubs.Publish(context.Background(), ev, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Len(t, writer.messages, 1, "kafka still receives the event")

	assert.Equal(t, "complaint.created", services.EventName(models.KindComplaintCreated))
}
