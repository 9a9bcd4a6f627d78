package repository

import (
	"errors"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// ErrStaleStatus is returned by conditional updates when the record was not
// in the expected status, i.e. a concurrent transition won the race.
var ErrStaleStatus = errors.New("record status changed concurrently")

// MissionFilter enumerates the legal predicates for listing missions. No
// dynamic filter maps; every predicate is typed.
type MissionFilter struct {
	Status             *models.MissionStatus
	CreatorID          *uint64
	AssignedDesignerID *uint64
	Category           *string
	BudgetRange        *models.BudgetRange
	Search             string // text-contains over title and description
	Page               int
	PageSize           int
}

// MissionRepository defines the interface for mission data access
type MissionRepository interface {
	// Create creates a new mission
	Create(mission *models.Mission) error

	// FindByID finds a mission by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Mission, error)

	// List retrieves missions with filtering and pagination
	List(filter MissionFilter) ([]models.Mission, int64, error)

	// Update updates a mission
	Update(mission *models.Mission) error

	// TransitionStatus applies fields only if the mission currently holds one
	// of the allowed statuses; returns ErrStaleStatus otherwise.
	TransitionStatus(id uint64, allowed []models.MissionStatus, fields map[string]interface{}) error

	// DeleteCascade deletes the mission and every dependent record in a fixed
	// order (messages, channels, deliveries, proposals, mission) within a
	// single transaction.
	DeleteCascade(id uint64) error
}

// ProposalRepository defines the interface for proposal data access
type ProposalRepository interface {
	// Create creates a new proposal
	Create(proposal *models.Proposal) error

	// FindByID finds a proposal by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Proposal, error)

	// FindByMissionAndDesigner finds the unique proposal for a pair
	FindByMissionAndDesigner(missionID, designerID uint64) (*models.Proposal, error)

	// ListByMission lists all proposals on a mission
	ListByMission(missionID uint64) ([]models.Proposal, error)

	// TransitionStatus moves a proposal from exactly one status to another;
	// returns ErrStaleStatus when the source status no longer holds.
	TransitionStatus(id uint64, from, to models.ProposalStatus) error

	// Accept atomically accepts the proposal, moves the mission to
	// IN_PROGRESS with the designer assigned, and rejects all sibling
	// PENDING proposals. Either everything commits or nothing does.
	Accept(proposal *models.Proposal) error

	// RejectPendingByMission rejects every PENDING proposal on a mission
	RejectPendingByMission(missionID uint64) error
}

// DeliveryRepository defines the interface for delivery data access
type DeliveryRepository interface {
	// Create creates a new delivery
	Create(delivery *models.Delivery) error

	// FindByID finds a delivery by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Delivery, error)

	// FindByMissionAndDesigner finds the single active delivery for the pair
	FindByMissionAndDesigner(missionID, designerID uint64) (*models.Delivery, error)

	// FindByAssetRef resolves a stored object reference (protected or final)
	// back to its delivery
	FindByAssetRef(ref string) (*models.Delivery, error)

	// ListByMission lists deliveries on a mission
	ListByMission(missionID uint64) ([]models.Delivery, error)

	// Transition applies fields only while the delivery still holds the
	// expected status; returns ErrStaleStatus otherwise. This is the
	// compare-and-swap every state machine step goes through.
	Transition(id uint64, from models.DeliveryStatus, fields map[string]interface{}) error

	// Finalize moves the delivery from PAID to FINAL_SENT and the mission
	// from IN_PROGRESS to COMPLETED in one transaction, both CAS-guarded.
	Finalize(delivery *models.Delivery, fields map[string]interface{}) error
}

// ChannelRepository defines the interface for messaging data access
type ChannelRepository interface {
	// Ensure finds or creates the channel for a (mission, designer) pair
	Ensure(missionID, creatorID, designerID uint64) (*models.Channel, error)

	// FindByID finds a channel by ID
	FindByID(id uint64) (*models.Channel, error)

	// AppendMessage stores a message in a channel
	AppendMessage(message *models.Message) error

	// ListMessages lists a channel's messages oldest first
	ListMessages(channelID uint64) ([]models.Message, error)

	// BumpUnread increments the unread counter of one side
	BumpUnread(channelID uint64, forCreator bool) error

	// ResetUnread clears the unread counter of one side
	ResetUnread(channelID uint64, forCreator bool) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error
}

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	// FindByUserID finds a user's subscription record
	FindByUserID(userID uint64) (*models.Subscription, error)

	// Upsert creates or replaces the subscription for its user
	Upsert(subscription *models.Subscription) error
}
