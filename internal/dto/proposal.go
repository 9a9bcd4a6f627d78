package dto

import (
	"time"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// ProposalDTO represents a proposal in API responses
type ProposalDTO struct {
	ID         uint64                `json:"id"`
	MissionID  uint64                `json:"mission_id"`
	DesignerID uint64                `json:"designer_id"`
	Message    string                `json:"message"`
	PriceCents *int64                `json:"price_cents"`
	Status     models.ProposalStatus `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Designer   *UserDTO              `json:"designer,omitempty"`
}

// ToProposalDTO converts a Proposal model to ProposalDTO
func ToProposalDTO(proposal models.Proposal) ProposalDTO {
	dto := ProposalDTO{
		ID:         proposal.ID,
		MissionID:  proposal.MissionID,
		DesignerID: proposal.DesignerID,
		Message:    proposal.Message,
		PriceCents: proposal.PriceCents,
		Status:     proposal.Status,
		CreatedAt:  proposal.CreatedAt,
		UpdatedAt:  proposal.UpdatedAt,
	}

	// Include designer if preloaded
	if proposal.Designer.ID != 0 {
		designer := ToUserDTO(proposal.Designer)
		dto.Designer = &designer
	}

	return dto
}

// ToProposalDTOs converts a slice of proposals
func ToProposalDTOs(proposals []models.Proposal) []ProposalDTO {
	items := make([]ProposalDTO, len(proposals))
	for i, proposal := range proposals {
		items[i] = ToProposalDTO(proposal)
	}
	return items
}
