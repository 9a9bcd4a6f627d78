package repository

import (
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// GormProposalRepository is a GORM implementation of ProposalRepository
type GormProposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository creates a new ProposalRepository
func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &GormProposalRepository{db: db}
}

// Create creates a new proposal
func (r *GormProposalRepository) Create(proposal *models.Proposal) error {
	return r.db.Create(proposal).Error
}

// FindByID finds a proposal by ID with optional preloading
func (r *GormProposalRepository) FindByID(id uint64, preload ...string) (*models.Proposal, error) {
	var proposal models.Proposal
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&proposal, id).Error; err != nil {
		return nil, err
	}

	return &proposal, nil
}

// FindByMissionAndDesigner finds the unique proposal for a pair
func (r *GormProposalRepository) FindByMissionAndDesigner(missionID, designerID uint64) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.Where("mission_id = ? AND designer_id = ?", missionID, designerID).
		First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ListByMission lists all proposals on a mission
func (r *GormProposalRepository) ListByMission(missionID uint64) ([]models.Proposal, error) {
	var proposals []models.Proposal
	if err := r.db.Where("mission_id = ?", missionID).
		Preload("Designer").
		Order("created_at ASC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

// TransitionStatus moves a proposal between statuses with a CAS guard
func (r *GormProposalRepository) TransitionStatus(id uint64, from, to models.ProposalStatus) error {
	res := r.db.Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// Accept atomically accepts a proposal, assigns the mission, and rejects all
// sibling PENDING proposals. A losing concurrent writer gets ErrStaleStatus.
func (r *GormProposalRepository) Accept(proposal *models.Proposal) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, models.ProposalStatusPending).
			Update("status", models.ProposalStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		res = tx.Model(&models.Mission{}).
			Where("id = ? AND status = ?", proposal.MissionID, models.MissionStatusOpen).
			Updates(map[string]interface{}{
				"status":               models.MissionStatusInProgress,
				"assigned_designer_id": proposal.DesignerID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		return tx.Model(&models.Proposal{}).
			Where("mission_id = ? AND id <> ? AND status = ?",
				proposal.MissionID, proposal.ID, models.ProposalStatusPending).
			Update("status", models.ProposalStatusRejected).Error
	})
}

// RejectPendingByMission rejects every PENDING proposal on a mission
func (r *GormProposalRepository) RejectPendingByMission(missionID uint64) error {
	return r.db.Model(&models.Proposal{}).
		Where("mission_id = ? AND status = ?", missionID, models.ProposalStatusPending).
		Update("status", models.ProposalStatusRejected).Error
}
