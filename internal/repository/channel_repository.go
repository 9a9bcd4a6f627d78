package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// GormChannelRepository is a GORM implementation of ChannelRepository
type GormChannelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new ChannelRepository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &GormChannelRepository{db: db}
}

// Ensure finds or creates the channel for a (mission, designer) pair
func (r *GormChannelRepository) Ensure(missionID, creatorID, designerID uint64) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.Where("mission_id = ? AND designer_id = ?", missionID, designerID).
		First(&channel).Error
	if err == nil {
		return &channel, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	channel = models.Channel{
		MissionID:  missionID,
		CreatorID:  creatorID,
		DesignerID: designerID,
	}
	if err := r.db.Create(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// FindByID finds a channel by ID
func (r *GormChannelRepository) FindByID(id uint64) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// AppendMessage stores a message in a channel
func (r *GormChannelRepository) AppendMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListMessages lists a channel's messages oldest first
func (r *GormChannelRepository) ListMessages(channelID uint64) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Where("channel_id = ?", channelID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// BumpUnread increments the unread counter of one side
func (r *GormChannelRepository) BumpUnread(channelID uint64, forCreator bool) error {
	column := "designer_unread"
	if forCreator {
		column = "creator_unread"
	}
	return r.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// ResetUnread clears the unread counter of one side
func (r *GormChannelRepository) ResetUnread(channelID uint64, forCreator bool) error {
	column := "designer_unread"
	if forCreator {
		column = "creator_unread"
	}
	return r.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		UpdateColumn(column, 0).Error
}
