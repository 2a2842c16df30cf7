package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"public-complaint-api/models"
)

// EventPublisher pushes a committed complaint event to an external channel.
type EventPublisher interface {
	Publish(ctx context.Context, ev ComplaintEvent, n *models.Notification) error
}

// Publishers fans an event out to every publisher and joins their errors.
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, ev ComplaintEvent, n *models.Notification) error {
	var errs []error
	for _, pub := range p {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, ev, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotificationPublisher publishes in-app notifications on
// notifications:<user_id> for realtime clients.
type RedisNotificationPublisher struct {
	client redisPublisher
}

func NewRedisNotificationPublisher(client redisPublisher) *RedisNotificationPublisher {
	return &RedisNotificationPublisher{client: client}
}

// NotificationChannel returns the pub/sub channel for a user.
func NotificationChannel(userID uint) string {
	return "notifications:" + strconv.FormatUint(uint64(userID), 10)
}

func (p *RedisNotificationPublisher) Publish(ctx context.Context, ev ComplaintEvent, n *models.Notification) error {
	if n == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, NotificationChannel(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ComplaintEventMessage is the JSON document written to the event topic.
type ComplaintEventMessage struct {
	Event              string                 `json:"event"`
	OccurredAt         time.Time              `json:"occurred_at"`
	ComplaintID        uint                   `json:"complaint_id"`
	RegistrationNumber string                 `json:"registration_number"`
	UserID             uint                   `json:"user_id"`
	ServiceID          uint                   `json:"service_id"`
	ServiceName        string                 `json:"service_name"`
	Status             models.ComplaintStatus `json:"status"`
	OldStatus          models.ComplaintStatus `json:"old_status,omitempty"`
	NewStatus          models.ComplaintStatus `json:"new_status,omitempty"`
}

// EventName maps a notification kind to its stream event name.
func EventName(kind models.NotificationKind) string {
	switch kind {
	case models.KindComplaintCreated:
		return "complaint.created"
	case models.KindComplaintStatusChanged:
		return "complaint.status_changed"
	default:
		return "complaint.unknown"
	}
}

// KafkaEventPublisher writes lifecycle events keyed by registration number so
// events of one complaint stay ordered within a partition.
type KafkaEventPublisher struct {
	writer kafkaMessageWriter
	now    func() time.Time
}

func NewKafkaEventPublisher(writer kafkaMessageWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer, now: time.Now}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, ev ComplaintEvent, _ *models.Notification) error {
	c := ev.Complaint
	msg := ComplaintEventMessage{
		Event:              EventName(ev.Kind),
		OccurredAt:         p.now().UTC(),
		ComplaintID:        c.ID,
		RegistrationNumber: c.RegistrationNumber,
		UserID:             c.UserID,
		ServiceID:          c.ServiceID,
		ServiceName:        c.ServiceName(),
		Status:             c.Status,
		OldStatus:          ev.OldStatus,
		NewStatus:          ev.NewStatus,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal complaint event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.RegistrationNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(msg.Event)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", msg.Event, err)
	}
	return nil
}
