package repository

import (
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// GormDeliveryRepository is a GORM implementation of DeliveryRepository
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Create creates a new delivery
func (r *GormDeliveryRepository) Create(delivery *models.Delivery) error {
	return r.db.Create(delivery).Error
}

// FindByID finds a delivery by ID with optional preloading
func (r *GormDeliveryRepository) FindByID(id uint64, preload ...string) (*models.Delivery, error) {
	var delivery models.Delivery
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&delivery, id).Error; err != nil {
		return nil, err
	}

	return &delivery, nil
}

// FindByMissionAndDesigner finds the single active delivery for the pair
func (r *GormDeliveryRepository) FindByMissionAndDesigner(missionID, designerID uint64) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.Where("mission_id = ? AND designer_id = ?", missionID, designerID).
		First(&delivery).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

// FindByAssetRef resolves a stored object reference back to its delivery
func (r *GormDeliveryRepository) FindByAssetRef(ref string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.Where("protected_ref = ? OR final_ref = ?", ref, ref).
		First(&delivery).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

// ListByMission lists deliveries on a mission
func (r *GormDeliveryRepository) ListByMission(missionID uint64) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	if err := r.db.Where("mission_id = ?", missionID).
		Order("created_at ASC").
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// Transition applies fields only while the delivery still holds the expected
// status. Two concurrent transition attempts on the same delivery can never
// both succeed; the loser gets ErrStaleStatus and must not mutate anything.
func (r *GormDeliveryRepository) Transition(id uint64, from models.DeliveryStatus, fields map[string]interface{}) error {
	res := r.db.Model(&models.Delivery{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// Finalize releases the final asset and completes the mission atomically
func (r *GormDeliveryRepository) Finalize(delivery *models.Delivery, fields map[string]interface{}) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Delivery{}).
			Where("id = ? AND status = ?", delivery.ID, models.DeliveryStatusPaid).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		res = tx.Model(&models.Mission{}).
			Where("id = ? AND status = ?", delivery.MissionID, models.MissionStatusInProgress).
			Update("status", models.MissionStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}
		return nil
	})
}
