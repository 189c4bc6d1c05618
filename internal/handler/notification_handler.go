package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/domain"
	"realtime-service/internal/response"
	"realtime-service/internal/service"
)

// NotificationHandler serves the user-facing notification read API and
// preference management.
type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

func NewNotificationHandler(notifications *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// GetNotifications godoc
// @Summary      List notifications
// @Tags         notifications
// @Security     BearerAuth
// @Param        page query int false "Page" default(1)
// @Param        limit query int false "Page size" default(20)
// @Param        unread query bool false "Unread only"
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	identity, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	unreadOnly := c.Query("unread") == "true"

	result, err := h.notifications.GetNotifications(c.Request.Context(), identity.UserID, tenantID, page, limit, unreadOnly)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// GetUnreadCount godoc
// @Summary      Get the unread notification count
// @Tags         notifications
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	identity, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	count, err := h.notifications.GetUnreadCount(c.Request.Context(), identity.UserID, tenantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, count)
}

// MarkAsRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	identity, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid notification id")
		return
	}

	notification, err := h.notifications.MarkAsRead(c.Request.Context(), id, identity.UserID, tenantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, notification)
}

// MarkAllAsRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	identity, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	count, err := h.notifications.MarkAllAsRead(c.Request.Context(), identity.UserID, tenantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"updated": count})
}

// DeleteNotification godoc
// @Summary      Delete one notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	identity, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid notification id")
		return
	}

	deleted, err := h.notifications.DeleteNotification(c.Request.Context(), id, identity.UserID, tenantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !deleted {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Notification not found")
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GetPreferences godoc
// @Summary      Get notification preferences
// @Description  Users without a saved row get the all-notify defaults.
// @Tags         notifications
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications/preferences [get]
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	identity, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	prefs, err := h.notifications.GetPreferences(c.Request.Context(), identity.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, prefs)
}

// UpdatePreferences godoc
// @Summary      Update notification preferences
// @Description  Partial update; omitted flags keep their current value.
// @Tags         notifications
// @Security     BearerAuth
// @Param        request body domain.PreferenceUpdate true "Changed flags"
// @Success      200 {object} response.SuccessResponse
// @Router       /notifications/preferences [put]
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	identity, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	var update domain.PreferenceUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid preference payload")
		return
	}

	prefs, err := h.notifications.UpdatePreferences(c.Request.Context(), identity.UserID, update)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, prefs)
}
