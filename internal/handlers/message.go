package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elky431-debug/creax-backend/internal/dto"
	apierrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/services"
)

// MessageHandler coordinates channel and message HTTP handlers.
type MessageHandler struct {
	messagingService *services.MessagingService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messagingService *services.MessagingService) *MessageHandler {
	return &MessageHandler{
		messagingService: messagingService,
	}
}

// GetMissionChannel returns the conversation channel between the mission's
// parties. The mission is loaded by RequireMissionParty.
func (h *MessageHandler) GetMissionChannel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	missionValue, exists := c.Get("mission")
	if !exists {
		apierrors.InternalError(c, "")
		return
	}
	mission := missionValue.(models.Mission)

	if mission.AssignedDesignerID == nil {
		apierrors.Respond(c, apierrors.NotFound("no channel exists for this mission yet"))
		return
	}

	channel, err := h.messagingService.ChannelForMission(mission.ID, mission.CreatorID, *mission.AssignedDesignerID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChannelDTO(*channel, userID))
}

// PostMessage appends a message to a channel the user participates in.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	type PostMessageRequest struct {
		Body string `json:"body" binding:"required"`
	}

	channelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.messagingService.PostMessage(channelID, userID, req.Body)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// ListMessages returns a channel's history and clears the caller's unread
// counter.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	channelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	messages, err := h.messagingService.ListMessages(channelID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": dto.ToMessageDTOs(messages),
	})
}
