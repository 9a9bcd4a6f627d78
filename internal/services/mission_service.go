package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/internal/storage"
	"github.com/elky431-debug/creax-backend/pkg/logger"
)

// MissionService drives the coarse mission lifecycle. Missions move to
// IN_PROGRESS only through proposal acceptance and to COMPLETED only through
// the delivery lifecycle's final release; the two creator-initiated moves
// (cancel, delete) live here.
type MissionService struct {
	missionRepo  repository.MissionRepository
	proposalRepo repository.ProposalRepository
	deliveryRepo repository.DeliveryRepository
	userRepo     repository.UserRepository
	messaging    *MessagingService
	store        storage.ObjectStore
}

// NewMissionService creates a new MissionService
func NewMissionService(
	missionRepo repository.MissionRepository,
	proposalRepo repository.ProposalRepository,
	deliveryRepo repository.DeliveryRepository,
	userRepo repository.UserRepository,
	messaging *MessagingService,
	store storage.ObjectStore,
) *MissionService {
	return &MissionService{
		missionRepo:  missionRepo,
		proposalRepo: proposalRepo,
		deliveryRepo: deliveryRepo,
		userRepo:     userRepo,
		messaging:    messaging,
		store:        store,
	}
}

// CreateMissionInput represents input for posting a mission
type CreateMissionInput struct {
	CreatorID   uint64
	Title       string
	Description string
	Category    string
	Deadline    *time.Time
	BudgetRange models.BudgetRange
	BudgetCents *int64
}

// Create posts a new OPEN mission.
func (s *MissionService) Create(input CreateMissionInput) (*models.Mission, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.Validation("category is required")
	}
	if input.BudgetCents != nil && *input.BudgetCents <= 0 {
		return nil, apperrors.Validation("budget must be a positive amount")
	}

	creator, err := s.userRepo.FindByID(input.CreatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to find user", err)
	}
	if creator.Role != models.RoleCreator {
		return nil, apperrors.Unauthorized("only creators can post missions")
	}

	mission := &models.Mission{
		CreatorID:   input.CreatorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Deadline:    input.Deadline,
		BudgetRange: input.BudgetRange,
		BudgetCents: input.BudgetCents,
		Status:      models.MissionStatusOpen,
	}

	if err := s.missionRepo.Create(mission); err != nil {
		return nil, apperrors.Internal("failed to create mission", err)
	}

	return mission, nil
}

// Get returns a mission with its creator and assignee loaded.
func (s *MissionService) Get(missionID uint64) (*models.Mission, error) {
	mission, err := s.missionRepo.FindByID(missionID, "Creator", "AssignedDesigner")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mission not found")
		}
		return nil, apperrors.Internal("failed to find mission", err)
	}
	return mission, nil
}

// ListMissionsInput represents filters for listing missions
type ListMissionsInput struct {
	Status             *models.MissionStatus
	CreatorID          *uint64
	AssignedDesignerID *uint64
	Category           *string
	BudgetRange        *models.BudgetRange
	Search             string
	Page               int
	PageSize           int
}

// List returns missions matching the typed filter.
func (s *MissionService) List(input ListMissionsInput) ([]models.Mission, int64, error) {
	filter := repository.MissionFilter{
		Status:             input.Status,
		CreatorID:          input.CreatorID,
		AssignedDesignerID: input.AssignedDesignerID,
		Category:           input.Category,
		BudgetRange:        input.BudgetRange,
		Search:             input.Search,
		Page:               input.Page,
		PageSize:           input.PageSize,
	}

	missions, total, err := s.missionRepo.List(filter)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list missions", err)
	}
	return missions, total, nil
}

// Cancel moves a mission to CANCELLED. Allowed for the owning creator while
// the mission is OPEN or IN_PROGRESS; every PENDING proposal is rejected as
// a side effect.
func (s *MissionService) Cancel(missionID, actorID uint64) (*models.Mission, error) {
	mission, err := s.Get(missionID)
	if err != nil {
		return nil, err
	}
	if mission.CreatorID != actorID {
		return nil, apperrors.Unauthorized("only the mission creator can cancel it")
	}
	if mission.Status != models.MissionStatusOpen && mission.Status != models.MissionStatusInProgress {
		return nil, apperrors.InvalidState("only open or in-progress missions can be cancelled")
	}

	err = s.missionRepo.TransitionStatus(missionID,
		[]models.MissionStatus{models.MissionStatusOpen, models.MissionStatusInProgress},
		map[string]interface{}{"status": models.MissionStatusCancelled})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the mission changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to cancel mission", err)
	}

	if err := s.proposalRepo.RejectPendingByMission(missionID); err != nil {
		// the cancel itself is committed; stale PENDING rows are treated as
		// ineligible on every read path, so this degraded state self-heals
		logger.Error().Err(err).Uint64("mission_id", missionID).Msg("failed to reject pending proposals after cancel")
	}

	if mission.AssignedDesignerID != nil {
		s.narrate(missionID, mission.CreatorID, *mission.AssignedDesignerID,
			"The mission was cancelled by the creator.", false)
	}

	return s.Get(missionID)
}

// Delete removes a COMPLETED or CANCELLED mission and everything that hangs
// off it: proposals, channels and their messages, deliveries, and the stored
// assets the deliveries reference.
func (s *MissionService) Delete(missionID, actorID uint64) error {
	mission, err := s.Get(missionID)
	if err != nil {
		return err
	}
	if mission.CreatorID != actorID {
		return apperrors.Unauthorized("only the mission creator can delete it")
	}
	if mission.Status != models.MissionStatusCompleted && mission.Status != models.MissionStatusCancelled {
		return apperrors.InvalidState("only completed or cancelled missions can be deleted")
	}

	deliveries, err := s.deliveryRepo.ListByMission(missionID)
	if err != nil {
		return apperrors.Internal("failed to list deliveries", err)
	}

	if err := s.missionRepo.DeleteCascade(missionID); err != nil {
		return apperrors.Internal("failed to delete mission", err)
	}

	// best effort: the records are gone, orphaned blobs are only a leak
	for _, d := range deliveries {
		if err := s.store.Delete(d.ProtectedRef); err != nil {
			logger.Warn().Err(err).Str("ref", d.ProtectedRef).Msg("failed to delete protected asset")
		}
		if d.FinalRef != nil {
			if err := s.store.Delete(*d.FinalRef); err != nil {
				logger.Warn().Err(err).Str("ref", *d.FinalRef).Msg("failed to delete final asset")
			}
		}
	}

	return nil
}

// narrate posts a best-effort system message; failures never affect the
// committed transition.
func (s *MissionService) narrate(missionID, creatorID, designerID uint64, text string, notifyCreator bool) {
	channel, err := s.messaging.EnsureChannel(missionID, creatorID, designerID)
	if err != nil {
		logger.Warn().Err(err).Uint64("mission_id", missionID).Msg("failed to ensure channel")
		return
	}
	if err := s.messaging.PostSystemMessage(channel.ID, text, notifyCreator); err != nil {
		logger.Warn().Err(err).Uint64("channel_id", channel.ID).Msg("failed to post system message")
	}
}
