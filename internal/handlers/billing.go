package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/services"
	"github.com/elky431-debug/creax-backend/pkg/logger"
)

// BillingHandler coordinates subscription HTTP handlers.
type BillingHandler struct {
	billingService *services.BillingService
	authService    *services.AuthService
	webhookSecret  string
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService *services.BillingService, authService *services.AuthService, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		authService:    authService,
		webhookSecret:  webhookSecret,
	}
}

// CreateCheckout opens a hosted checkout session for the authenticated
// designer.
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	type CheckoutRequest struct {
		Plan string `json:"plan" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	session, err := h.billingService.CreateCheckoutSession(user, req.Plan)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSubscription reports whether the authenticated user holds an active
// subscription.
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	active, err := h.billingService.HasActiveSubscription(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active": active,
	})
}

// Webhook consumes payment processor events. The signature is an
// HMAC-SHA256 of the raw body; requests failing verification are dropped
// before any parsing.
func (h *BillingHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apierrors.BadRequest(c, "Failed to read request body")
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		logger.Warn().Str("remote", c.ClientIP()).Msg("rejected webhook with bad signature")
		apierrors.Unauthenticated(c, "Invalid webhook signature")
		return
	}

	var event services.ProcessorEvent
	if err := json.Unmarshal(body, &event); err != nil {
		apierrors.BadRequest(c, "Invalid event payload")
		return
	}

	if err := h.billingService.HandleProcessorEvent(event); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
	})
}

func (h *BillingHandler) verifySignature(body []byte, signature string) bool {
	if h.webhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
