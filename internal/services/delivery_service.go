package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/protection"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/internal/storage"
	"github.com/elky431-debug/creax-backend/pkg/logger"
)

// DeliveryService is the central state machine of the fulfillment protocol:
// protected preview submission, the validation/revision loop, the manual
// payment confirmation gate, and final-asset release.
//
// The alternating-actor pattern is the core correctness property: only the
// creator advances a delivery out of PROTECTED_SENT, only the designer
// advances it out of VALIDATED and PAID. No single party can push the
// transaction past a step that needs the other party's attestation.
//
// "Transfer received" is the designer's own claim; the platform never moves
// money and performs no verification. There is deliberately no dispute or
// override transition for a creator contesting a false attestation; this is
// a known limitation.
type DeliveryService struct {
	deliveryRepo repository.DeliveryRepository
	missionRepo  repository.MissionRepository
	userRepo     repository.UserRepository
	messaging    *MessagingService
	store        storage.ObjectStore
	engine       *protection.Engine

	protectedTTL time.Duration
	finalTTL     time.Duration
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	deliveryRepo repository.DeliveryRepository,
	missionRepo repository.MissionRepository,
	userRepo repository.UserRepository,
	messaging *MessagingService,
	store storage.ObjectStore,
	engine *protection.Engine,
	protectedTTL, finalTTL time.Duration,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		missionRepo:  missionRepo,
		userRepo:     userRepo,
		messaging:    messaging,
		store:        store,
		engine:       engine,
		protectedTTL: protectedTTL,
		finalTTL:     finalTTL,
	}
}

// SubmitProtectedInput represents a protected preview upload
type SubmitProtectedInput struct {
	MissionID   uint64
	DesignerID  uint64
	Data        []byte
	ContentType string
	AmountCents int64
}

// SubmitProtected uploads a deliverable preview. Images go through the
// protection engine (blur + watermark + re-encode); a pipeline failure
// rejects the upload wholesale, never storing the unprotected source. Video
// assets are stored as uploaded: video watermarking is intentionally absent.
//
// If a NEEDS_REVISION delivery already exists for this (mission, designer)
// pair it is reused in place, its revision note cleared. Any other existing
// delivery blocks a new submission.
func (s *DeliveryService) SubmitProtected(input SubmitProtectedInput) (*models.Delivery, error) {
	if len(input.Data) == 0 {
		return nil, apperrors.Validation("an asset file is required")
	}
	if input.AmountCents <= 0 {
		return nil, apperrors.Validation("amount must be a positive number of cents")
	}
	kind, err := assetKindOf(input.ContentType)
	if err != nil {
		return nil, err
	}

	mission, err := s.missionRepo.FindByID(input.MissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mission not found")
		}
		return nil, apperrors.Internal("failed to find mission", err)
	}
	if mission.Status != models.MissionStatusInProgress {
		return nil, apperrors.InvalidState("deliveries can only be submitted on an in-progress mission")
	}
	if mission.AssignedDesignerID == nil || *mission.AssignedDesignerID != input.DesignerID {
		return nil, apperrors.Unauthorized("only the assigned designer can deliver on this mission")
	}

	designer, err := s.userRepo.FindByID(input.DesignerID)
	if err != nil {
		return nil, apperrors.Internal("failed to find designer", err)
	}

	existing, err := s.deliveryRepo.FindByMissionAndDesigner(input.MissionID, input.DesignerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check existing delivery", err)
	}
	if existing != nil && existing.Status != models.DeliveryStatusNeedsRevision {
		return nil, apperrors.InvalidState("a delivery already exists for this mission; wait for the creator's review")
	}

	ref, storedKind, err := s.protectAndStore(input.Data, input.ContentType, kind, designer.DisplayName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		// resubmission after a revision request mutates the same record
		fields := map[string]interface{}{
			"status":               models.DeliveryStatusProtectedSent,
			"protected_ref":        ref,
			"asset_kind":           storedKind,
			"amount_cents":         input.AmountCents,
			"revision_note":        "",
			"protected_expires_at": now.Add(s.protectedTTL),
		}
		if err := s.deliveryRepo.Transition(existing.ID, models.DeliveryStatusNeedsRevision, fields); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return nil, apperrors.Conflict("the delivery changed concurrently; reload and retry")
			}
			return nil, apperrors.Internal("failed to resubmit delivery", err)
		}

		s.narrateDelivery(existing, "The designer sent a revised protected preview.", true)
		return s.sanitizedGet(existing.ID)
	}

	delivery := &models.Delivery{
		MissionID:          input.MissionID,
		DesignerID:         input.DesignerID,
		CreatorID:          mission.CreatorID,
		ProtectedRef:       ref,
		AssetKind:          storedKind,
		AmountCents:        input.AmountCents,
		Status:             models.DeliveryStatusProtectedSent,
		PaymentStatus:      models.PaymentStatusPending,
		ProtectedExpiresAt: now.Add(s.protectedTTL),
	}
	if err := s.deliveryRepo.Create(delivery); err != nil {
		return nil, apperrors.Internal("failed to create delivery", err)
	}

	s.narrateDelivery(delivery, "The designer sent a protected preview of the deliverable.", true)
	return s.sanitize(delivery), nil
}

// Validate is the creator's approval of a protected preview. The delivery
// moves to VALIDATED with payment pending, and the designer's payout
// instructions plus the amount due are posted to the channel, since
// settlement happens off-platform by bank transfer.
func (s *DeliveryService) Validate(deliveryID, actorID uint64) (*models.Delivery, error) {
	delivery, err := s.load(deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery.CreatorID != actorID {
		return nil, apperrors.Unauthorized("only the mission creator can validate a delivery")
	}
	if delivery.Status != models.DeliveryStatusProtectedSent {
		return nil, apperrors.InvalidState("only a delivery awaiting review can be validated")
	}

	err = s.deliveryRepo.Transition(deliveryID, models.DeliveryStatusProtectedSent, map[string]interface{}{
		"status":         models.DeliveryStatusValidated,
		"payment_status": models.PaymentStatusPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the delivery changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to validate delivery", err)
	}

	s.postPayoutInstructions(delivery)
	return s.sanitizedGet(deliveryID)
}

// RequestRevision sends a protected preview back to the designer with a
// mandatory note. Revision cycles are unbounded, but each one passes back
// through PROTECTED_SENT before it can be validated again.
func (s *DeliveryService) RequestRevision(deliveryID, actorID uint64, note string) (*models.Delivery, error) {
	if strings.TrimSpace(note) == "" {
		return nil, apperrors.Validation("a revision note is required")
	}

	delivery, err := s.load(deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery.CreatorID != actorID {
		return nil, apperrors.Unauthorized("only the mission creator can request a revision")
	}
	if delivery.Status != models.DeliveryStatusProtectedSent {
		return nil, apperrors.InvalidState("revisions can only be requested on a delivery awaiting review")
	}

	err = s.deliveryRepo.Transition(deliveryID, models.DeliveryStatusProtectedSent, map[string]interface{}{
		"status":         models.DeliveryStatusNeedsRevision,
		"revision_count": gorm.Expr("revision_count + 1"),
		"revision_note":  strings.TrimSpace(note),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the delivery changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to request revision", err)
	}

	s.narrateDelivery(delivery, fmt.Sprintf("The creator requested a revision: %s", strings.TrimSpace(note)), false)
	return s.sanitizedGet(deliveryID)
}

// ConfirmTransfer records the designer's attestation that the bank transfer
// arrived. This is a self-attestation with no independent verification; the
// platform only records the claim.
func (s *DeliveryService) ConfirmTransfer(deliveryID, actorID uint64) (*models.Delivery, error) {
	delivery, err := s.load(deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery.DesignerID != actorID {
		return nil, apperrors.Unauthorized("only the designer can confirm receiving the transfer")
	}
	if delivery.Status != models.DeliveryStatusValidated {
		return nil, apperrors.InvalidState("the transfer can only be confirmed on a validated delivery")
	}

	now := time.Now()
	err = s.deliveryRepo.Transition(deliveryID, models.DeliveryStatusValidated, map[string]interface{}{
		"status":         models.DeliveryStatusPaid,
		"payment_status": models.PaymentStatusPaid,
		"paid_at":        now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the delivery changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to confirm transfer", err)
	}

	s.narrateDelivery(delivery, "The designer confirmed receiving the bank transfer. Payment is settled.", true)
	return s.sanitizedGet(deliveryID)
}

// SendFinalInput represents the final, unprotected asset upload
type SendFinalInput struct {
	DeliveryID  uint64
	DesignerID  uint64
	Data        []byte
	ContentType string
}

// SendFinal releases the unprotected asset. It is only reachable once the
// designer has confirmed payment; the final reference is never attached
// while payment is pending. The mission completes in the same transaction.
func (s *DeliveryService) SendFinal(input SendFinalInput) (*models.Delivery, error) {
	if len(input.Data) == 0 {
		return nil, apperrors.Validation("a final asset file is required")
	}
	if _, err := assetKindOf(input.ContentType); err != nil {
		return nil, err
	}

	delivery, err := s.load(input.DeliveryID)
	if err != nil {
		return nil, err
	}
	if delivery.DesignerID != input.DesignerID {
		return nil, apperrors.Unauthorized("only the designer can send the final asset")
	}
	if delivery.Status != models.DeliveryStatusPaid || delivery.PaymentStatus != models.PaymentStatusPaid {
		return nil, apperrors.InvalidState("the final asset can only be sent after the transfer is confirmed")
	}

	ref, err := s.store.Put(input.Data, input.ContentType)
	if err != nil {
		return nil, apperrors.Internal("failed to store final asset", err)
	}

	err = s.deliveryRepo.Finalize(delivery, map[string]interface{}{
		"status":           models.DeliveryStatusFinalSent,
		"final_ref":        ref,
		"final_expires_at": time.Now().Add(s.finalTTL),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Conflict("the delivery or mission changed concurrently; reload and retry")
		}
		return nil, apperrors.Internal("failed to release final asset", err)
	}

	s.narrateDelivery(delivery, "The final files are available. Thank you for working together!", true)
	return s.sanitizedGet(input.DeliveryID)
}

// Get returns a delivery to one of its parties, with the final-asset
// reference hidden unless the payment is settled.
func (s *DeliveryService) Get(deliveryID, actorID uint64) (*models.Delivery, error) {
	delivery, err := s.load(deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery.CreatorID != actorID && delivery.DesignerID != actorID {
		// 404 instead of 403 to avoid leaking delivery existence
		return nil, apperrors.NotFound("delivery not found")
	}
	return s.sanitize(delivery), nil
}

// ListByMission returns a mission's deliveries to one of its parties.
func (s *DeliveryService) ListByMission(missionID, actorID uint64) ([]models.Delivery, error) {
	mission, err := s.missionRepo.FindByID(missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mission not found")
		}
		return nil, apperrors.Internal("failed to find mission", err)
	}

	isAssignee := mission.AssignedDesignerID != nil && *mission.AssignedDesignerID == actorID
	if mission.CreatorID != actorID && !isAssignee {
		return nil, apperrors.Unauthorized("you are not a party to this mission")
	}

	deliveries, err := s.deliveryRepo.ListByMission(missionID)
	if err != nil {
		return nil, apperrors.Internal("failed to list deliveries", err)
	}

	for i := range deliveries {
		s.sanitize(&deliveries[i])
	}
	return deliveries, nil
}

// AuthorizeAsset resolves a stored reference and decides whether the actor
// may fetch it right now. Protected previews honor their soft expiry for the
// creator; final assets require settled payment and honor their own expiry.
// The designer can always re-download what they uploaded.
func (s *DeliveryService) AuthorizeAsset(ref string, actorID uint64) (*models.Delivery, error) {
	delivery, err := s.deliveryRepo.FindByAssetRef(ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("asset not found")
		}
		return nil, apperrors.Internal("failed to resolve asset", err)
	}
	if delivery.CreatorID != actorID && delivery.DesignerID != actorID {
		return nil, apperrors.NotFound("asset not found")
	}
	if actorID == delivery.DesignerID {
		return delivery, nil
	}

	now := time.Now()
	if ref == delivery.ProtectedRef {
		if now.After(delivery.ProtectedExpiresAt) {
			return nil, apperrors.Unauthorized("the protected preview has expired")
		}
		return delivery, nil
	}

	// final asset, requested by the creator
	if delivery.PaymentStatus != models.PaymentStatusPaid {
		return nil, apperrors.Unauthorized("the final asset is unlocked once the designer confirms the transfer")
	}
	if delivery.FinalExpiresAt != nil && now.After(*delivery.FinalExpiresAt) {
		return nil, apperrors.Unauthorized("the final asset download period has expired")
	}
	return delivery, nil
}

func (s *DeliveryService) load(deliveryID uint64) (*models.Delivery, error) {
	delivery, err := s.deliveryRepo.FindByID(deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("delivery not found")
		}
		return nil, apperrors.Internal("failed to find delivery", err)
	}
	return delivery, nil
}

func (s *DeliveryService) sanitizedGet(deliveryID uint64) (*models.Delivery, error) {
	delivery, err := s.load(deliveryID)
	if err != nil {
		return nil, err
	}
	return s.sanitize(delivery), nil
}

// sanitize enforces the read-boundary half of the payment gate: the final
// reference is visible if and only if the payment is settled, regardless of
// the delivery status.
func (s *DeliveryService) sanitize(delivery *models.Delivery) *models.Delivery {
	if delivery.PaymentStatus != models.PaymentStatusPaid {
		delivery.FinalRef = nil
		delivery.FinalExpiresAt = nil
	}
	return delivery
}

// protectAndStore runs the protection pipeline for images and stores the
// result. The pipeline failing rejects the upload; there is no unprotected
// fallback.
func (s *DeliveryService) protectAndStore(data []byte, contentType string, kind models.AssetKind, attribution string) (string, models.AssetKind, error) {
	if kind == models.AssetKindVideo {
		ref, err := s.store.Put(data, contentType)
		if err != nil {
			return "", kind, apperrors.Internal("failed to store asset", err)
		}
		return ref, kind, nil
	}

	protected, err := s.engine.Protect(data, attribution, time.Now().Year())
	if err != nil {
		return "", kind, apperrors.Protection("could not generate the protected preview; the upload was rejected", err)
	}

	ref, err := s.store.Put(protected, "image/jpeg")
	if err != nil {
		return "", kind, apperrors.Internal("failed to store protected asset", err)
	}
	return ref, kind, nil
}

// postPayoutInstructions drops the designer's bank details and the amount
// due into the channel after validation, best effort.
func (s *DeliveryService) postPayoutInstructions(delivery *models.Delivery) {
	designer, err := s.userRepo.FindByID(delivery.DesignerID)
	if err != nil {
		logger.Warn().Err(err).Uint64("designer_id", delivery.DesignerID).Msg("failed to load designer for payout message")
		return
	}

	payout := designer.PayoutDetails
	if payout == "" {
		payout = "the designer has not provided payout details yet"
	}
	text := fmt.Sprintf(
		"Delivery validated. Please settle %s by bank transfer. Payout details: %s. The designer will confirm once the transfer arrives.",
		formatAmount(delivery.AmountCents), payout,
	)
	s.narrateDelivery(delivery, text, true)
}

func (s *DeliveryService) narrateDelivery(delivery *models.Delivery, text string, notifyCreator bool) {
	channel, err := s.messaging.EnsureChannel(delivery.MissionID, delivery.CreatorID, delivery.DesignerID)
	if err != nil {
		logger.Warn().Err(err).Uint64("mission_id", delivery.MissionID).Msg("failed to ensure channel")
		return
	}
	if err := s.messaging.PostSystemMessage(channel.ID, text, notifyCreator); err != nil {
		logger.Warn().Err(err).Uint64("channel_id", channel.ID).Msg("failed to post system message")
	}
}

// assetKindOf classifies an upload by MIME type.
func assetKindOf(contentType string) (models.AssetKind, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.AssetKindImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return models.AssetKindVideo, nil
	default:
		return "", apperrors.Validation("unsupported asset type; expected an image or video")
	}
}
