package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/pkg/logger"
)

// ProcessorEvent is a webhook notification from the payment processor.
// Only settlement events mutate subscription state; everything else is
// acknowledged and dropped.
type ProcessorEvent struct {
	Type             string     `json:"type"`
	UserID           uint64     `json:"user_id"`
	Plan             string     `json:"plan"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}

// CheckoutSession is the redirect handle returned to the client. The
// session never carries payment credentials; the processor's hosted page
// collects those.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// BillingService handles platform subscriptions: checkout session creation
// and processor webhook consumption. Subscriptions are activated exclusively
// by processor events, never optimistically at checkout time.
type BillingService struct {
	subsRepo        repository.SubscriptionRepository
	checkoutBaseURL string
}

// NewBillingService creates a new BillingService
func NewBillingService(subsRepo repository.SubscriptionRepository, checkoutBaseURL string) *BillingService {
	return &BillingService{
		subsRepo:        subsRepo,
		checkoutBaseURL: checkoutBaseURL,
	}
}

// CreateCheckoutSession opens a hosted checkout for a designer's
// subscription plan and returns the redirect URL.
func (s *BillingService) CreateCheckoutSession(user *models.User, plan string) (*CheckoutSession, error) {
	if user.Role != models.RoleDesigner {
		return nil, apperrors.Unauthorized("only designers subscribe to the platform")
	}
	plan = strings.TrimSpace(plan)
	if plan == "" {
		return nil, apperrors.Validation("a subscription plan is required")
	}

	sessionID := uuid.NewString()
	return &CheckoutSession{
		SessionID:   sessionID,
		CheckoutURL: fmt.Sprintf("%s/checkout/%s?plan=%s&user=%d", strings.TrimRight(s.checkoutBaseURL, "/"), sessionID, plan, user.ID),
	}, nil
}

// HandleProcessorEvent consumes a verified webhook event. Unknown event
// types are ignored so the processor stops retrying them.
func (s *BillingService) HandleProcessorEvent(event ProcessorEvent) error {
	switch event.Type {
	case "subscription.paid", "invoice.paid":
	default:
		logger.Debug().Str("type", event.Type).Msg("ignoring processor event")
		return nil
	}

	if event.UserID == 0 {
		return apperrors.Validation("processor event is missing the user reference")
	}

	sub := &models.Subscription{
		UserID:           event.UserID,
		Plan:             event.Plan,
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: event.CurrentPeriodEnd,
	}
	if err := s.subsRepo.Upsert(sub); err != nil {
		return apperrors.Internal("failed to activate subscription", err)
	}

	logger.Info().Uint64("user_id", event.UserID).Str("plan", event.Plan).Msg("subscription activated")
	return nil
}

// HasActiveSubscription reports whether the user holds an active,
// unexpired subscription.
func (s *BillingService) HasActiveSubscription(userID uint64) (bool, error) {
	sub, err := s.subsRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Internal("failed to look up subscription", err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		return false, nil
	}
	if sub.CurrentPeriodEnd != nil && time.Now().After(*sub.CurrentPeriodEnd) {
		return false, nil
	}
	return true, nil
}
