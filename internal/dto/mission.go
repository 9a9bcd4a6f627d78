package dto

import (
	"time"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// MissionDTO represents a mission in API responses
type MissionDTO struct {
	ID                 uint64               `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Category           string               `json:"category"`
	Status             models.MissionStatus `json:"status"`
	BudgetRange        models.BudgetRange   `json:"budget_range,omitempty"`
	BudgetCents        *int64               `json:"budget_cents"`
	Deadline           *time.Time           `json:"deadline"`
	CreatorID          uint64               `json:"creator_id"`
	AssignedDesignerID *uint64              `json:"assigned_designer_id"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Creator            *UserDTO             `json:"creator,omitempty"`
	AssignedDesigner   *UserDTO             `json:"assigned_designer,omitempty"`
}

// MissionListItemDTO represents a mission in list responses (minimal data)
type MissionListItemDTO struct {
	ID          uint64               `json:"id"`
	Title       string               `json:"title"`
	Category    string               `json:"category"`
	Status      models.MissionStatus `json:"status"`
	BudgetRange models.BudgetRange   `json:"budget_range,omitempty"`
	BudgetCents *int64               `json:"budget_cents"`
	Deadline    *time.Time           `json:"deadline"`
	CreatorID   uint64               `json:"creator_id"`
	Creator     *UserDTO             `json:"creator,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// MissionListResponse represents a paginated list of missions
type MissionListResponse struct {
	Missions   []MissionListItemDTO `json:"missions"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int64                `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
}

// ToMissionDTO converts a Mission model to MissionDTO
func ToMissionDTO(mission models.Mission) MissionDTO {
	dto := MissionDTO{
		ID:                 mission.ID,
		Title:              mission.Title,
		Description:        mission.Description,
		Category:           mission.Category,
		Status:             mission.Status,
		BudgetRange:        mission.BudgetRange,
		BudgetCents:        mission.BudgetCents,
		Deadline:           mission.Deadline,
		CreatorID:          mission.CreatorID,
		AssignedDesignerID: mission.AssignedDesignerID,
		CreatedAt:          mission.CreatedAt,
		UpdatedAt:          mission.UpdatedAt,
	}

	// Include creator if preloaded
	if mission.Creator.ID != 0 {
		creator := ToUserDTO(mission.Creator)
		dto.Creator = &creator
	}

	// Include assigned designer if preloaded
	if mission.AssignedDesigner != nil && mission.AssignedDesigner.ID != 0 {
		designer := ToUserDTO(*mission.AssignedDesigner)
		dto.AssignedDesigner = &designer
	}

	return dto
}

// ToMissionListItemDTO converts a Mission model to MissionListItemDTO
func ToMissionListItemDTO(mission models.Mission) MissionListItemDTO {
	dto := MissionListItemDTO{
		ID:          mission.ID,
		Title:       mission.Title,
		Category:    mission.Category,
		Status:      mission.Status,
		BudgetRange: mission.BudgetRange,
		BudgetCents: mission.BudgetCents,
		Deadline:    mission.Deadline,
		CreatorID:   mission.CreatorID,
		CreatedAt:   mission.CreatedAt,
	}

	if mission.Creator.ID != 0 {
		creator := ToUserDTO(mission.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToMissionListResponse converts a slice of missions to MissionListResponse
func ToMissionListResponse(missions []models.Mission, page, pageSize int, totalCount int64) MissionListResponse {
	items := make([]MissionListItemDTO, len(missions))
	for i, mission := range missions {
		items[i] = ToMissionListItemDTO(mission)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return MissionListResponse{
		Missions:   items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
