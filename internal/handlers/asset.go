package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/services"
	"github.com/elky431-debug/creax-backend/internal/storage"
)

// AssetHandler serves stored delivery assets to authorized parties.
type AssetHandler struct {
	deliveryService *services.DeliveryService
	store           storage.ObjectStore
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(deliveryService *services.DeliveryService, store storage.ObjectStore) *AssetHandler {
	return &AssetHandler{
		deliveryService: deliveryService,
		store:           store,
	}
}

// GetAsset streams a stored asset. Authorization runs per request: the
// payment gate and expiry windows are re-checked on every download, so a
// link that worked yesterday can stop working today.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	ref := c.Param("ref")
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "")
		return
	}

	if _, err := h.deliveryService.AuthorizeAsset(ref, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	data, contentType, err := h.store.Get(ref)
	if err != nil {
		if err == storage.ErrNotFound {
			apierrors.Respond(c, apierrors.NotFound("asset not found"))
			return
		}
		apierrors.InternalError(c, "Failed to read asset")
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
