package services

import (
	"context"

	"public-complaint-api/models"
)

// ComplaintEvent is raised after a complaint is created or its status changes.
// OldStatus and NewStatus are only set for KindComplaintStatusChanged.
type ComplaintEvent struct {
	Kind      models.NotificationKind
	Complaint *models.Complaint
	OldStatus models.ComplaintStatus
	NewStatus models.ComplaintStatus
}

func ComplaintCreated(c *models.Complaint) ComplaintEvent {
	return ComplaintEvent{Kind: models.KindComplaintCreated, Complaint: c}
}

func ComplaintStatusChanged(c *models.Complaint, oldStatus, newStatus models.ComplaintStatus) ComplaintEvent {
	return ComplaintEvent{
		Kind:      models.KindComplaintStatusChanged,
		Complaint: c,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// Payload builds the structured data stored with the in-app notification.
func (e ComplaintEvent) Payload() models.NotificationData {
	c := e.Complaint
	data := models.NotificationData{
		ComplaintID:        c.ID,
		RegistrationNumber: c.RegistrationNumber,
		ApplicantName:      c.ApplicantName,
		ServiceName:        c.ServiceName(),
	}
	switch e.Kind {
	case models.KindComplaintStatusChanged:
		data.OldStatus = e.OldStatus
		data.NewStatus = e.NewStatus
	default:
		data.Status = c.Status
	}
	return data
}

// Notifier receives complaint lifecycle events once they are committed.
type Notifier interface {
	Dispatch(ctx context.Context, ev ComplaintEvent)
}
