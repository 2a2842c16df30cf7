package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"public-complaint-api/middleware"
	"public-complaint-api/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GET /notifications?page=
func (nc *NotificationController) Index(c *gin.Context) {
	page, err := nc.notifications.List(c.Request.Context(), middleware.CurrentActor(c), queryPage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", page)
}

// GET /notifications/unread-count
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	count, err := nc.notifications.UnreadCount(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{"unread_count": count})
}

// PUT /notifications/:id/read
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	if err := nc.notifications.MarkRead(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		nc.notFoundOr(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Notification marked as read", nil)
}

// PUT /notifications/mark-all-read
func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	if _, err := nc.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "All notifications marked as read", nil)
}

// DELETE /notifications/:id
func (nc *NotificationController) Destroy(c *gin.Context) {
	if err := nc.notifications.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		nc.notFoundOr(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Notification deleted", nil)
}

func (nc *NotificationController) notFoundOr(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "Notification not found")
		return
	}
	respondError(c, err)
}
