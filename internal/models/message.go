package models

import "time"

// Message is a channel entry. SenderID is nil for system messages.
type Message struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ChannelID uint64    `gorm:"not null;index" json:"channel_id"`
	SenderID  *uint64   `gorm:"index" json:"sender_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	System    bool      `gorm:"not null;default:false" json:"system"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Channel Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	Sender  *User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
