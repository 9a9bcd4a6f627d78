package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/pkg/logger"
)

// ProposalService manages the bid protocol between designers and a mission's
// creator. Acceptance is exclusive: exactly one proposal per mission can ever
// be ACCEPTED, and accepting it rejects every other PENDING sibling in the
// same transaction.
type ProposalService struct {
	proposalRepo repository.ProposalRepository
	missionRepo  repository.MissionRepository
	userRepo     repository.UserRepository
	subsRepo     repository.SubscriptionRepository
	messaging    *MessagingService

	// when true, submitting a proposal requires an active designer
	// subscription (billing gate, disjoint from the delivery payment flow)
	subscriptionEnforced bool
}

// NewProposalService creates a new ProposalService
func NewProposalService(
	proposalRepo repository.ProposalRepository,
	missionRepo repository.MissionRepository,
	userRepo repository.UserRepository,
	subsRepo repository.SubscriptionRepository,
	messaging *MessagingService,
	subscriptionEnforced bool,
) *ProposalService {
	return &ProposalService{
		proposalRepo:         proposalRepo,
		missionRepo:          missionRepo,
		userRepo:             userRepo,
		subsRepo:             subsRepo,
		messaging:            messaging,
		subscriptionEnforced: subscriptionEnforced,
	}
}

// SubmitProposalInput represents input for submitting a proposal
type SubmitProposalInput struct {
	MissionID  uint64
	DesignerID uint64
	Message    string
	PriceCents *int64
}

// Submit creates a PENDING proposal on an OPEN mission and seeds the shared
// channel with a system message echoing the proposal.
func (s *ProposalService) Submit(input SubmitProposalInput) (*models.Proposal, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.Validation("a proposal message is required")
	}
	if input.PriceCents != nil && *input.PriceCents <= 0 {
		return nil, apperrors.Validation("proposed price must be a positive amount")
	}

	designer, err := s.userRepo.FindByID(input.DesignerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to find user", err)
	}
	if designer.Role != models.RoleDesigner {
		return nil, apperrors.Unauthorized("only designers can submit proposals")
	}

	if s.subscriptionEnforced {
		if err := s.ensureActiveSubscription(input.DesignerID); err != nil {
			return nil, err
		}
	}

	mission, err := s.missionRepo.FindByID(input.MissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mission not found")
		}
		return nil, apperrors.Internal("failed to find mission", err)
	}
	if mission.Status != models.MissionStatusOpen {
		return nil, apperrors.InvalidState("proposals can only be submitted while the mission is open")
	}

	if _, err := s.proposalRepo.FindByMissionAndDesigner(input.MissionID, input.DesignerID); err == nil {
		return nil, apperrors.Conflict("you have already submitted a proposal for this mission")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check existing proposal", err)
	}

	proposal := &models.Proposal{
		MissionID:  input.MissionID,
		DesignerID: input.DesignerID,
		Message:    strings.TrimSpace(input.Message),
		PriceCents: input.PriceCents,
		Status:     models.ProposalStatusPending,
	}

	if err := s.proposalRepo.Create(proposal); err != nil {
		return nil, apperrors.Internal("failed to create proposal", err)
	}

	s.seedChannel(mission, proposal, designer)

	return proposal, nil
}

// Accept accepts a PENDING proposal. The mission becomes IN_PROGRESS with
// this designer assigned and every sibling PENDING proposal is rejected,
// atomically with the acceptance.
func (s *ProposalService) Accept(proposalID, actorID uint64) (*models.Proposal, error) {
	proposal, mission, err := s.loadWithMission(proposalID)
	if err != nil {
		return nil, err
	}
	if mission.CreatorID != actorID {
		return nil, apperrors.Unauthorized("only the mission creator can accept proposals")
	}
	// a proposal on a non-OPEN mission is ineligible even if a crash left it
	// PENDING; checking the mission here makes the degraded state harmless
	if mission.Status != models.MissionStatusOpen {
		return nil, apperrors.InvalidState("the mission is no longer open")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperrors.InvalidState("only pending proposals can be accepted")
	}

	if err := s.proposalRepo.Accept(proposal); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the proposal or mission changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to accept proposal", err)
	}

	s.narrate(mission, proposal.DesignerID,
		"Your proposal was accepted. The mission is now in progress.", false)

	return s.proposalRepo.FindByID(proposalID, "Designer", "Mission")
}

// Reject rejects a PENDING proposal. No cascading effects.
func (s *ProposalService) Reject(proposalID, actorID uint64) (*models.Proposal, error) {
	proposal, mission, err := s.loadWithMission(proposalID)
	if err != nil {
		return nil, err
	}
	if mission.CreatorID != actorID {
		return nil, apperrors.Unauthorized("only the mission creator can reject proposals")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperrors.InvalidState("only pending proposals can be rejected")
	}

	if err := s.proposalRepo.TransitionStatus(proposalID, models.ProposalStatusPending, models.ProposalStatusRejected); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the proposal changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to reject proposal", err)
	}

	s.narrate(mission, proposal.DesignerID, "Your proposal was declined by the creator.", false)

	return s.proposalRepo.FindByID(proposalID)
}

// Withdraw lets a designer pull their own PENDING proposal.
func (s *ProposalService) Withdraw(proposalID, actorID uint64) (*models.Proposal, error) {
	proposal, _, err := s.loadWithMission(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.DesignerID != actorID {
		return nil, apperrors.Unauthorized("only the proposal's designer can withdraw it")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperrors.InvalidState("only pending proposals can be withdrawn")
	}

	if err := s.proposalRepo.TransitionStatus(proposalID, models.ProposalStatusPending, models.ProposalStatusWithdrawn); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the proposal changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to withdraw proposal", err)
	}

	return s.proposalRepo.FindByID(proposalID)
}

// ListByMission lists a mission's proposals. The creator sees every
// proposal; a designer sees only their own. PENDING proposals on a mission
// that is no longer OPEN are surfaced as REJECTED without a write.
func (s *ProposalService) ListByMission(missionID, actorID uint64) ([]models.Proposal, error) {
	mission, err := s.missionRepo.FindByID(missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mission not found")
		}
		return nil, apperrors.Internal("failed to find mission", err)
	}

	proposals, err := s.proposalRepo.ListByMission(missionID)
	if err != nil {
		return nil, apperrors.Internal("failed to list proposals", err)
	}

	visible := make([]models.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if mission.CreatorID != actorID && p.DesignerID != actorID {
			continue
		}
		if mission.Status != models.MissionStatusOpen && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusRejected
		}
		visible = append(visible, p)
	}

	return visible, nil
}

func (s *ProposalService) loadWithMission(proposalID uint64) (*models.Proposal, *models.Mission, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("proposal not found")
		}
		return nil, nil, apperrors.Internal("failed to find proposal", err)
	}

	mission, err := s.missionRepo.FindByID(proposal.MissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("mission not found")
		}
		return nil, nil, apperrors.Internal("failed to find mission", err)
	}

	return proposal, mission, nil
}

func (s *ProposalService) ensureActiveSubscription(designerID uint64) error {
	sub, err := s.subsRepo.FindByUserID(designerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Unauthorized("an active subscription is required to submit proposals")
		}
		return apperrors.Internal("failed to check subscription", err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		return apperrors.Unauthorized("an active subscription is required to submit proposals")
	}
	if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(time.Now()) {
		return apperrors.Unauthorized("your subscription has expired; renew it to submit proposals")
	}
	return nil
}

// seedChannel opens the conversation for a fresh proposal, best effort.
func (s *ProposalService) seedChannel(mission *models.Mission, proposal *models.Proposal, designer *models.User) {
	channel, err := s.messaging.EnsureChannel(mission.ID, mission.CreatorID, proposal.DesignerID)
	if err != nil {
		logger.Warn().Err(err).Uint64("mission_id", mission.ID).Msg("failed to ensure channel")
		return
	}

	text := fmt.Sprintf("%s proposed on \"%s\": %s", designer.DisplayName, mission.Title, proposal.Message)
	if proposal.PriceCents != nil {
		text += fmt.Sprintf(" (proposed price: %s)", formatAmount(*proposal.PriceCents))
	}
	if err := s.messaging.PostSystemMessage(channel.ID, text, true); err != nil {
		logger.Warn().Err(err).Uint64("channel_id", channel.ID).Msg("failed to post system message")
	}
}

func (s *ProposalService) narrate(mission *models.Mission, designerID uint64, text string, notifyCreator bool) {
	channel, err := s.messaging.EnsureChannel(mission.ID, mission.CreatorID, designerID)
	if err != nil {
		logger.Warn().Err(err).Uint64("mission_id", mission.ID).Msg("failed to ensure channel")
		return
	}
	if err := s.messaging.PostSystemMessage(channel.ID, text, notifyCreator); err != nil {
		logger.Warn().Err(err).Uint64("channel_id", channel.ID).Msg("failed to post system message")
	}
}

// formatAmount renders minor currency units for system messages.
func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d EUR", cents/100, cents%100)
}
