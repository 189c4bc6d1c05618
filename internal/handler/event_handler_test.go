package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/domain"
	"realtime-service/internal/events"
	"realtime-service/internal/realtime"
	"realtime-service/internal/repository"
	"realtime-service/internal/service"
)

type recordedEmit struct {
	room      realtime.Room
	eventType string
}

type recordingRooms struct {
	emits []recordedEmit
}

func (r *recordingRooms) EmitToRoom(room realtime.Room, eventType string, payload interface{}) {
	r.emits = append(r.emits, recordedEmit{room, eventType})
}

func setupEventRouter(t *testing.T) (*gin.Engine, *recordingRooms) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rooms := &recordingRooms{}
	emitter := events.NewEmitter(rooms, nil, nil)

	db := setupHandlerTestDB(t)
	dispatcher := service.NewDispatcher(
		repository.NewUserRepository(db),
		repository.NewPreferenceRepository(db),
		repository.NewNotificationRepository(db),
		nil, nil, nil, nil,
	)

	h := NewEventHandler(emitter, dispatcher, nil)
	r := gin.New()
	r.POST("/internal/events/:entity/:action", h.EmitEvent)
	r.POST("/internal/notifications/dispatch", h.DispatchNotification)
	return r, rooms
}

func TestEmitEventRoutesToFacade(t *testing.T) {
	r, rooms := setupEventRouter(t)

	projectID := uuid.New()
	workspaceID := uuid.New()

	w := doRequest(r, http.MethodPost, "/internal/events/project/created", gin.H{
		"projectId":   projectID.String(),
		"workspaceId": workspaceID.String(),
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, rooms.emits, 1)
	assert.Equal(t, realtime.WorkspaceRoom(workspaceID), rooms.emits[0].room)
	assert.Equal(t, events.EventProjectCreated, rooms.emits[0].eventType)
}

func TestEmitEventClientReassignmentFansOut(t *testing.T) {
	r, rooms := setupEventRouter(t)

	projectID := uuid.New()
	workspaceID := uuid.New()
	previousClient := uuid.New()
	newClient := uuid.New()

	w := doRequest(r, http.MethodPost, "/internal/events/project/client-changed", gin.H{
		"projectId":        projectID.String(),
		"workspaceId":      workspaceID.String(),
		"previousClientId": previousClient.String(),
		"newClientId":      newClient.String(),
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	// Project room, both client rooms, plus the generic project update
	roomsSeen := map[string]bool{}
	for _, e := range rooms.emits {
		roomsSeen[e.room.Name()] = true
	}
	assert.True(t, roomsSeen[realtime.ProjectRoom(projectID).Name()])
	assert.True(t, roomsSeen[realtime.ClientRoom(previousClient).Name()])
	assert.True(t, roomsSeen[realtime.ClientRoom(newClient).Name()])
}

func TestEmitEventRejectsUnknownTargets(t *testing.T) {
	r, rooms := setupEventRouter(t)

	w := doRequest(r, http.MethodPost, "/internal/events/widget/created", gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPost, "/internal/events/project/archived", gin.H{
		"projectId":   uuid.New().String(),
		"workspaceId": uuid.New().String(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Empty(t, rooms.emits)
}

func TestDispatchNotificationEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupHandlerTestDB(t)

	tenant := uuid.New()
	target := uuid.New()
	require.NoError(t, db.Create(&domain.User{ID: target, TenantID: tenant, Name: "Dana"}).Error)

	dispatcher := service.NewDispatcher(
		repository.NewUserRepository(db),
		repository.NewPreferenceRepository(db),
		repository.NewNotificationRepository(db),
		nil, nil, nil, nil,
	)
	h := NewEventHandler(events.NewEmitter(&recordingRooms{}, nil, nil), dispatcher, nil)

	r := gin.New()
	r.POST("/internal/notifications/dispatch", h.DispatchNotification)

	w := doRequest(r, http.MethodPost, "/internal/notifications/dispatch", gin.H{
		"tenant_id":      tenant.String(),
		"target_user_id": target.String(),
		"type":           "TASK_ASSIGNED",
		"title":          "Task assigned to you",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Dispatched bool `json:"dispatched"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Dispatched)

	// Self-excluded dispatch reports dispatched=false but still succeeds
	w = doRequest(r, http.MethodPost, "/internal/notifications/dispatch", gin.H{
		"tenant_id":      tenant.String(),
		"target_user_id": target.String(),
		"actor_id":       target.String(),
		"type":           "COMMENT_ADDED",
		"title":          "New comment",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Dispatched)

	// Missing target is a validation error
	w = doRequest(r, http.MethodPost, "/internal/notifications/dispatch", gin.H{
		"tenant_id": tenant.String(),
		"type":      "TASK_ASSIGNED",
		"title":     "Task assigned to you",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
