package repository

import (
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/database"
	"github.com/elky431-debug/creax-backend/internal/models"
)

// GormMissionRepository is a GORM implementation of MissionRepository
type GormMissionRepository struct {
	db *gorm.DB
}

// NewMissionRepository creates a new MissionRepository
func NewMissionRepository(db *gorm.DB) MissionRepository {
	return &GormMissionRepository{db: db}
}

// Create creates a new mission
func (r *GormMissionRepository) Create(mission *models.Mission) error {
	return r.db.Create(mission).Error
}

// FindByID finds a mission by ID with optional preloading
func (r *GormMissionRepository) FindByID(id uint64, preload ...string) (*models.Mission, error) {
	var mission models.Mission
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&mission, id).Error; err != nil {
		return nil, err
	}

	return &mission, nil
}

// List retrieves missions with filtering and pagination
func (r *GormMissionRepository) List(filter MissionFilter) ([]models.Mission, int64, error) {
	var missions []models.Mission

	query := r.db.Model(&models.Mission{})

	if filter.Status != nil {
		query = query.Where("missions.status = ?", *filter.Status)
	}
	if filter.CreatorID != nil {
		query = query.Where("missions.creator_id = ?", *filter.CreatorID)
	}
	if filter.AssignedDesignerID != nil {
		query = query.Where("missions.assigned_designer_id = ?", *filter.AssignedDesignerID)
	}
	if filter.Category != nil {
		query = query.Where("missions.category = ?", *filter.Category)
	}
	if filter.BudgetRange != nil {
		query = query.Where("missions.budget_range = ?", *filter.BudgetRange)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("missions.title LIKE ? OR missions.description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("missions.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Creator").Find(&missions).Error; err != nil {
		return nil, 0, err
	}

	return missions, total, nil
}

// Update updates a mission
func (r *GormMissionRepository) Update(mission *models.Mission) error {
	return r.db.Save(mission).Error
}

// TransitionStatus applies fields only while the mission holds an allowed status
func (r *GormMissionRepository) TransitionStatus(id uint64, allowed []models.MissionStatus, fields map[string]interface{}) error {
	res := r.db.Model(&models.Mission{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// DeleteCascade deletes a mission and its dependents in fixed order
func (r *GormMissionRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var channelIDs []uint64
		if err := tx.Model(&models.Channel{}).
			Where("mission_id = ?", id).
			Pluck("id", &channelIDs).Error; err != nil {
			return err
		}

		if len(channelIDs) > 0 {
			if err := tx.Where("channel_id IN ?", channelIDs).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", channelIDs).Delete(&models.Channel{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("mission_id = ?", id).Delete(&models.Delivery{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mission_id = ?", id).Delete(&models.Proposal{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Mission{}, id).Error
	})
}
