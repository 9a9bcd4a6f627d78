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

// ProposalHandler coordinates proposal HTTP handlers.
type ProposalHandler struct {
	proposalService *services.ProposalService
}

// NewProposalHandler creates a new ProposalHandler.
func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
	}
}

// SubmitProposal creates a proposal on an open mission.
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	type SubmitProposalRequest struct {
		Message    string `json:"message" binding:"required"`
		PriceCents *int64 `json:"price_cents"`
	}

	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	var req SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	proposal, err := h.proposalService.Submit(services.SubmitProposalInput{
		MissionID:  missionID,
		DesignerID: userID,
		Message:    req.Message,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProposalDTO(*proposal))
}

// ListProposals returns a mission's proposals. The creator sees all of
// them; a designer sees only their own.
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	proposals, err := h.proposalService.ListByMission(missionID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": dto.ToProposalDTOs(proposals),
	})
}

// AcceptProposal accepts a pending proposal, assigning the mission to its
// designer and rejecting the competing proposals.
func (h *ProposalHandler) AcceptProposal(c *gin.Context) {
	h.transition(c, h.proposalService.Accept)
}

// RejectProposal rejects a pending proposal.
func (h *ProposalHandler) RejectProposal(c *gin.Context) {
	h.transition(c, h.proposalService.Reject)
}

// WithdrawProposal withdraws the designer's own pending proposal.
func (h *ProposalHandler) WithdrawProposal(c *gin.Context) {
	h.transition(c, h.proposalService.Withdraw)
}

func (h *ProposalHandler) transition(c *gin.Context, fn func(proposalID, actorID uint64) (*models.Proposal, error)) {
	proposalID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	proposal, err := fn(proposalID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProposalDTO(*proposal))
}
