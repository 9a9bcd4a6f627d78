package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// GormSubscriptionRepository is a GORM implementation of SubscriptionRepository
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByUserID finds a user's subscription record
func (r *GormSubscriptionRepository) FindByUserID(userID uint64) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&subscription).Error; err != nil {
		return nil, err
	}
	return &subscription, nil
}

// Upsert creates or replaces the subscription for its user
func (r *GormSubscriptionRepository) Upsert(subscription *models.Subscription) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan", "status", "current_period_end", "updated_at",
			}),
		}).
		Create(subscription).Error
}
