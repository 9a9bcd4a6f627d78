package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elky431-debug/creax-backend/internal/constants"
	"github.com/elky431-debug/creax-backend/internal/dto"
	apierrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/services"
)

// DeliveryHandler coordinates delivery HTTP handlers.
type DeliveryHandler struct {
	deliveryService *services.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(deliveryService *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
	}
}

// SubmitDelivery uploads a deliverable as a multipart form. The stored
// asset is the protected rendition; the original bytes are discarded.
func (h *DeliveryHandler) SubmitDelivery(c *gin.Context) {
	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	amountCents, err := strconv.ParseInt(c.PostForm("amount_cents"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid amount_cents")
		return
	}

	data, contentType, ok := readUpload(c, "asset")
	if !ok {
		return
	}

	delivery, err := h.deliveryService.SubmitProtected(services.SubmitProtectedInput{
		MissionID:   missionID,
		DesignerID:  userID,
		Data:        data,
		ContentType: contentType,
		AmountCents: amountCents,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDeliveryDTO(*delivery))
}

// ListDeliveries returns a mission's deliveries to one of its parties.
func (h *DeliveryHandler) ListDeliveries(c *gin.Context) {
	missionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	deliveries, err := h.deliveryService.ListByMission(missionID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": dto.ToDeliveryDTOs(deliveries),
	})
}

// GetDelivery returns a delivery to one of its parties.
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	delivery, err := h.deliveryService.Get(deliveryID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliveryDTO(*delivery))
}

// ValidateDelivery is the creator's approval of a protected preview.
func (h *DeliveryHandler) ValidateDelivery(c *gin.Context) {
	h.transition(c, h.deliveryService.Validate)
}

// RequestRevision sends the delivery back to the designer with a note.
func (h *DeliveryHandler) RequestRevision(c *gin.Context) {
	type RevisionRequest struct {
		Note string `json:"note" binding:"required"`
	}

	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	delivery, err := h.deliveryService.RequestRevision(deliveryID, userID, req.Note)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliveryDTO(*delivery))
}

// ConfirmTransfer records the designer's attestation that the bank
// transfer arrived.
func (h *DeliveryHandler) ConfirmTransfer(c *gin.Context) {
	h.transition(c, h.deliveryService.ConfirmTransfer)
}

// SendFinal uploads the unprotected final asset once payment is settled.
func (h *DeliveryHandler) SendFinal(c *gin.Context) {
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	data, contentType, ok := readUpload(c, "asset")
	if !ok {
		return
	}

	delivery, err := h.deliveryService.SendFinal(services.SendFinalInput{
		DeliveryID:  deliveryID,
		DesignerID:  userID,
		Data:        data,
		ContentType: contentType,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliveryDTO(*delivery))
}

func (h *DeliveryHandler) transition(c *gin.Context, fn func(deliveryID, actorID uint64) (*models.Delivery, error)) {
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	delivery, err := fn(deliveryID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeliveryDTO(*delivery))
}

// readUpload reads a multipart file field, enforcing the per-kind size
// limits before the bytes reach the protection pipeline.
func readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		apierrors.BadRequest(c, "An asset file is required")
		return nil, "", false
	}

	contentType := fileHeader.Header.Get("Content-Type")
	limit := int64(constants.MaxImageUploadBytes)
	if strings.HasPrefix(contentType, "video/") {
		limit = constants.MaxVideoUploadBytes
	}
	if fileHeader.Size > limit {
		apierrors.BadRequest(c, "The uploaded file is too large")
		return nil, "", false
	}

	data, ok := readAll(c, fileHeader)
	if !ok {
		return nil, "", false
	}
	return data, contentType, true
}

func readAll(c *gin.Context, fileHeader *multipart.FileHeader) ([]byte, bool) {
	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return nil, false
	}
	return data, true
}
