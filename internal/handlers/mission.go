package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elky431-debug/creax-backend/internal/dto"
	apierrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/services"
	"github.com/elky431-debug/creax-backend/internal/utils"
)

// MissionHandler coordinates mission HTTP handlers.
type MissionHandler struct {
	missionService *services.MissionService
}

// NewMissionHandler creates a new MissionHandler.
func NewMissionHandler(missionService *services.MissionService) *MissionHandler {
	return &MissionHandler{
		missionService: missionService,
	}
}

// CreateMission posts a new open mission.
func (h *MissionHandler) CreateMission(c *gin.Context) {
	type CreateMissionRequest struct {
		Title       string     `json:"title" binding:"required,max=500"`
		Description string     `json:"description"`
		Category    string     `json:"category" binding:"required,max=50"`
		Deadline    *time.Time `json:"deadline"`
		BudgetRange string     `json:"budget_range"`
		BudgetCents *int64     `json:"budget_cents"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	var req CreateMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	mission, err := h.missionService.Create(services.CreateMissionInput{
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Deadline:    req.Deadline,
		BudgetRange: models.BudgetRange(req.BudgetRange),
		BudgetCents: req.BudgetCents,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMissionDTO(*mission))
}

// ListMissions returns missions matching the query filters.
func (h *MissionHandler) ListMissions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	input := services.ListMissionsInput{
		Search:   c.Query("search"),
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if status := c.Query("status"); status != "" {
		s := models.MissionStatus(status)
		input.Status = &s
	}
	if category := c.Query("category"); category != "" {
		input.Category = &category
	}
	if budgetRange := c.Query("budget_range"); budgetRange != "" {
		b := models.BudgetRange(budgetRange)
		input.BudgetRange = &b
	}
	if creatorIDStr := c.Query("creator_id"); creatorIDStr != "" {
		creatorID, err := strconv.ParseUint(creatorIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid creator_id")
			return
		}
		input.CreatorID = &creatorID
	}
	if designerIDStr := c.Query("assigned_designer_id"); designerIDStr != "" {
		designerID, err := strconv.ParseUint(designerIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_designer_id")
			return
		}
		input.AssignedDesignerID = &designerID
	}

	missions, total, err := h.missionService.List(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMissionListResponse(missions, params.Page, params.Limit, total))
}

// GetMission returns a specific mission by ID.
func (h *MissionHandler) GetMission(c *gin.Context) {
	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	mission, err := h.missionService.Get(missionID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMissionDTO(*mission))
}

// CancelMission cancels an open or in-progress mission.
func (h *MissionHandler) CancelMission(c *gin.Context) {
	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	mission, err := h.missionService.Cancel(missionID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMissionDTO(*mission))
}

// DeleteMission removes a terminal mission and its dependent records.
func (h *MissionHandler) DeleteMission(c *gin.Context) {
	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	if err := h.missionService.Delete(missionID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mission deleted successfully",
	})
}

// parseIDParam parses a numeric URL parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
