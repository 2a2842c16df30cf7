package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	complaintsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_submitted_total",
		Help: "Complaints submitted, by service.",
	}, []string{"service"})

	complaintStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_status_updates_total",
		Help: "Administrator status updates, by previous and new status.",
	}, []string{"from", "to"})

	notificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_deliveries_total",
		Help: "Notification delivery attempts, by kind, channel and outcome.",
	}, []string{"kind", "channel", "result"})
)

func deliveryResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
