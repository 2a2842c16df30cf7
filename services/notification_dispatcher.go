package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"public-complaint-api/models"
)

// MailSender delivers an HTML e-mail.
type MailSender interface {
	SendMail(to []string, subject, html string) error
}

// DispatcherOptions wires the delivery channels of a NotificationDispatcher.
// Mailer and Publisher are optional.
type DispatcherOptions struct {
	Notifications NotificationStore
	Users         UserStore
	Mailer        MailSender
	Publisher     EventPublisher
	TrackingURL   func(registrationNumber string) string
	// Run executes mail delivery; defaults to a new goroutine.
	Run func(func())
	Now func() time.Time
}

// NotificationDispatcher delivers complaint events to the owning user: an
// in-app record, realtime/event stream publication, then e-mail.
type NotificationDispatcher struct {
	notifications NotificationStore
	users         UserStore
	mailer        MailSender
	publisher     EventPublisher
	trackingURL   func(string) string
	run           func(func())
	now           func() time.Time
}

func NewNotificationDispatcher(opts DispatcherOptions) *NotificationDispatcher {
	d := &NotificationDispatcher{
		notifications: opts.Notifications,
		users:         opts.Users,
		mailer:        opts.Mailer,
		publisher:     opts.Publisher,
		trackingURL:   opts.TrackingURL,
		run:           opts.Run,
		now:           opts.Now,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.run == nil {
		d.run = func(fn func()) { go fn() }
	}
	if d.trackingURL == nil {
		d.trackingURL = func(reg string) string {
			return "http://localhost:3000/track-complaint?registration_number=" + reg
		}
	}
	return d
}

// Dispatch never fails the caller: the complaint change is already committed.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, ev ComplaintEvent) {
	if ev.Complaint == nil {
		return
	}
	kind := string(ev.Kind)
	now := d.now()

	n := &models.Notification{
		ID:        uuid.NewString(),
		Type:      ev.Kind,
		UserID:    ev.Complaint.UserID,
		Data:      datatypes.NewJSONType(ev.Payload()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := d.notifications.Create(ctx, n)
	notificationDeliveries.WithLabelValues(kind, "database", deliveryResult(err)).Inc()
	if err != nil {
		log.Printf("[notify] failed to store %s notification for complaint %s: %v", kind, ev.Complaint.RegistrationNumber, err)
		n = nil
	}

	if d.publisher != nil {
		err := d.publisher.Publish(ctx, ev, n)
		notificationDeliveries.WithLabelValues(kind, "stream", deliveryResult(err)).Inc()
		if err != nil {
			log.Printf("[notify] failed to publish %s for complaint %s: %v", kind, ev.Complaint.RegistrationNumber, err)
		}
	}

	if d.mailer == nil {
		return
	}
	bg := persistentContext(ctx)
	d.run(func() {
		d.sendMail(bg, ev)
	})
}

func (d *NotificationDispatcher) sendMail(ctx context.Context, ev ComplaintEvent) {
	kind := string(ev.Kind)
	owner, err := d.users.FindByID(ctx, ev.Complaint.UserID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[notify] failed to load owner %d: %v", ev.Complaint.UserID, err)
		}
		return
	}
	if owner.Email == "" {
		return
	}

	content := renderComplaintMail(ev, owner.Name, d.trackingURL(ev.Complaint.RegistrationNumber))
	err = d.mailer.SendMail([]string{owner.Email}, content.Subject, content.HTML)
	notificationDeliveries.WithLabelValues(kind, "mail", deliveryResult(err)).Inc()
	if err != nil {
		log.Printf("[notify] email send failed (subject=%q to=%s): %v", content.Subject, owner.Email, err)
	}
}
