package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmhernandez2525/learning-hall/internal/http/response"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/ctxutil"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

const builderChannelPrefix = "course-builder:"

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	courses services.CourseService
	metrics *observability.Metrics

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // key: SSE client id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, courses services.CourseService, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		courses: courses,
		metrics: metrics,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

type channelRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Channel  string `json:"channel" binding:"required"`
}

// GET /api/sse/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}

	client := h.hub.NewSSEClient(userID)
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	h.metrics.SSEClientInc()
	h.log.Debug("SSE stream open", "user_id", userID, "client_id", client.ID)

	// Every client hears its user's own channel.
	h.hub.AddChannel(client, userID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()
	h.hub.CloseClient(client)
	h.metrics.SSEClientDec()
}

// POST /api/sse/subscribe
func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	client, channel, ok := h.resolve(c)
	if !ok {
		return
	}
	h.hub.AddChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "subscribed", "channel": channel})
}

// POST /api/sse/unsubscribe
func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	client, channel, ok := h.resolve(c)
	if !ok {
		return
	}
	h.hub.RemoveChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "unsubscribed", "channel": channel})
}

// resolve finds the caller's client and checks the caller may listen on the channel: its own
// user channel or the builder channel of a course it owns.
func (h *RealtimeHandler) resolve(c *gin.Context) (*realtime.SSEClient, string, bool) {
	ctx := c.Request.Context()
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return nil, "", false
	}

	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
		return nil, "", false
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return nil, "", false
	}

	h.mu.RLock()
	client, exists := h.clients[clientID]
	h.mu.RUnlock()
	if !exists || client.UserID != userID {
		response.RespondError(c, http.StatusConflict, "no_active_stream", errors.New("no active SSE connection for this client"))
		return nil, "", false
	}

	channel := strings.TrimSpace(req.Channel)
	switch {
	case channel == userID.String():
	case strings.HasPrefix(channel, builderChannelPrefix):
		courseID, err := uuid.Parse(strings.TrimPrefix(channel, builderChannelPrefix))
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
			return nil, "", false
		}
		if err := h.courses.OwnsCourse(ctx, nil, courseID); err != nil {
			response.RespondAPIError(c, err, "forbidden_channel")
			return nil, "", false
		}
	default:
		response.RespondError(c, http.StatusForbidden, "forbidden_channel", errors.New("channel not allowed"))
		return nil, "", false
	}
	return client, channel, true
}
