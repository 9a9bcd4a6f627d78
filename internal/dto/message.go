package dto

import (
	"time"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// ChannelDTO represents a conversation channel in API responses. The unread
// counter is the one belonging to the requesting user.
type ChannelDTO struct {
	ID         uint64    `json:"id"`
	MissionID  uint64    `json:"mission_id"`
	CreatorID  uint64    `json:"creator_id"`
	DesignerID uint64    `json:"designer_id"`
	Unread     int       `json:"unread"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageDTO represents a channel message in API responses
type MessageDTO struct {
	ID        uint64    `json:"id"`
	ChannelID uint64    `json:"channel_id"`
	SenderID  *uint64   `json:"sender_id"`
	Body      string    `json:"body"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"created_at"`
	Sender    *UserDTO  `json:"sender,omitempty"`
}

// ToChannelDTO converts a Channel model to ChannelDTO for the given viewer
func ToChannelDTO(channel models.Channel, viewerID uint64) ChannelDTO {
	unread := channel.CreatorUnread
	if viewerID == channel.DesignerID {
		unread = channel.DesignerUnread
	}
	return ChannelDTO{
		ID:         channel.ID,
		MissionID:  channel.MissionID,
		CreatorID:  channel.CreatorID,
		DesignerID: channel.DesignerID,
		Unread:     unread,
		CreatedAt:  channel.CreatedAt,
	}
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(message models.Message) MessageDTO {
	dto := MessageDTO{
		ID:        message.ID,
		ChannelID: message.ChannelID,
		SenderID:  message.SenderID,
		Body:      message.Body,
		System:    message.System,
		CreatedAt: message.CreatedAt,
	}

	// Include sender if preloaded
	if message.Sender != nil && message.Sender.ID != 0 {
		sender := ToUserDTO(*message.Sender)
		dto.Sender = &sender
	}

	return dto
}

// ToMessageDTOs converts a slice of messages
func ToMessageDTOs(messages []models.Message) []MessageDTO {
	items := make([]MessageDTO, len(messages))
	for i, message := range messages {
		items[i] = ToMessageDTO(message)
	}
	return items
}
