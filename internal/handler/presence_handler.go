package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"realtime-service/internal/presence"
	"realtime-service/internal/response"
)

// PresenceHandler exposes presence queries for status display. All
// routes are tenant-scoped through the session identity.
type PresenceHandler struct {
	tracker *presence.Tracker
}

func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// GetOnlineUsers godoc
// @Summary      List online users
// @Description  Returns every user of the caller's tenant with status ONLINE or IDLE.
// @Tags         presence
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse
// @Router       /presence/online [get]
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	_, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	records := h.tracker.GetOnlineUsersForTenant(tenantID)
	payloads := make([]presence.Payload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, rec.ToPayload())
	}

	response.SendSuccess(c, http.StatusOK, payloads)
}

// GetAllPresence godoc
// @Summary      List all presence records for the tenant
// @Tags         presence
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse
// @Router       /presence/users [get]
func (h *PresenceHandler) GetAllPresence(c *gin.Context) {
	_, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	records := h.tracker.GetAllPresenceForTenant(tenantID)
	payloads := make([]presence.Payload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, rec.ToPayload())
	}

	response.SendSuccess(c, http.StatusOK, payloads)
}

// GetUserStatus godoc
// @Summary      Get one user's presence
// @Description  Users that never connected report OFFLINE, not missing.
// @Tags         presence
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200 {object} response.SuccessResponse
// @Router       /presence/status/{userId} [get]
func (h *PresenceHandler) GetUserStatus(c *gin.Context) {
	_, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid user id")
		return
	}

	rec := h.tracker.GetPresence(tenantID, userID)
	response.SendSuccess(c, http.StatusOK, rec.ToPayload())
}

// BatchStatusRequest asks for presence of several users at once
type BatchStatusRequest struct {
	UserIDs []uuid.UUID `json:"userIds" binding:"required"`
}

// GetBatchStatus godoc
// @Summary      Get presence for a batch of users
// @Tags         presence
// @Security     BearerAuth
// @Param        request body BatchStatusRequest true "User IDs"
// @Success      200 {object} response.SuccessResponse
// @Router       /presence/status/batch [post]
func (h *PresenceHandler) GetBatchStatus(c *gin.Context) {
	_, tenantID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req BatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "userIds is required")
		return
	}

	records := h.tracker.GetPresenceForUsers(tenantID, req.UserIDs)
	payloads := make([]presence.Payload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, rec.ToPayload())
	}

	response.SendSuccess(c, http.StatusOK, payloads)
}
