package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/repository"
)

// MessagingService owns the per-mission conversation channels. The lifecycle
// services call it to narrate transitions; message delivery is never part of
// a transition's correctness.
type MessagingService struct {
	channelRepo repository.ChannelRepository
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(channelRepo repository.ChannelRepository) *MessagingService {
	return &MessagingService{channelRepo: channelRepo}
}

// EnsureChannel finds or creates the channel between a mission's creator and
// one designer.
func (s *MessagingService) EnsureChannel(missionID, creatorID, designerID uint64) (*models.Channel, error) {
	channel, err := s.channelRepo.Ensure(missionID, creatorID, designerID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure channel: %w", err)
	}
	return channel, nil
}

// PostSystemMessage appends a system message and bumps the recipient's unread
// counter.
func (s *MessagingService) PostSystemMessage(channelID uint64, text string, notifyCreator bool) error {
	message := &models.Message{
		ChannelID: channelID,
		Body:      text,
		System:    true,
	}
	if err := s.channelRepo.AppendMessage(message); err != nil {
		return fmt.Errorf("failed to post system message: %w", err)
	}
	if err := s.channelRepo.BumpUnread(channelID, notifyCreator); err != nil {
		return fmt.Errorf("failed to bump unread counter: %w", err)
	}
	return nil
}

// PostMessage appends a user message from one of the channel's participants.
func (s *MessagingService) PostMessage(channelID, senderID uint64, body string) (*models.Message, error) {
	if body == "" {
		return nil, apperrors.Validation("message body is required")
	}

	channel, err := s.channelRepo.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("channel not found")
		}
		return nil, apperrors.Internal("failed to find channel", err)
	}
	if senderID != channel.CreatorID && senderID != channel.DesignerID {
		return nil, apperrors.Unauthorized("you are not a participant of this channel")
	}

	message := &models.Message{
		ChannelID: channelID,
		SenderID:  &senderID,
		Body:      body,
	}
	if err := s.channelRepo.AppendMessage(message); err != nil {
		return nil, apperrors.Internal("failed to post message", err)
	}

	notifyCreator := senderID == channel.DesignerID
	if err := s.channelRepo.BumpUnread(channelID, notifyCreator); err != nil {
		return nil, apperrors.Internal("failed to bump unread counter", err)
	}

	return message, nil
}

// ListMessages returns a channel's messages for a participant and clears
// their unread counter.
func (s *MessagingService) ListMessages(channelID, actorID uint64) ([]models.Message, error) {
	channel, err := s.channelRepo.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("channel not found")
		}
		return nil, apperrors.Internal("failed to find channel", err)
	}
	if actorID != channel.CreatorID && actorID != channel.DesignerID {
		return nil, apperrors.Unauthorized("you are not a participant of this channel")
	}

	messages, err := s.channelRepo.ListMessages(channelID)
	if err != nil {
		return nil, apperrors.Internal("failed to list messages", err)
	}

	if err := s.channelRepo.ResetUnread(channelID, actorID == channel.CreatorID); err != nil {
		return nil, apperrors.Internal("failed to reset unread counter", err)
	}

	return messages, nil
}

// ChannelForMission returns the channel of a (mission, designer) pair if one
// exists.
func (s *MessagingService) ChannelForMission(missionID, creatorID, designerID uint64) (*models.Channel, error) {
	return s.channelRepo.Ensure(missionID, creatorID, designerID)
}
