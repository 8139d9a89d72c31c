package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmtukut/propabridge-2/internal/api/middleware"
	"github.com/mmtukut/propabridge-2/internal/services"
	"github.com/mmtukut/propabridge-2/internal/storage"
)

// ImageEnqueuer schedules background normalization of an uploaded photo.
type ImageEnqueuer interface {
	EnqueueImageProcess(ctx context.Context, listingID int64, s3Key string) error
}

// RestListingHandler handles REST requests for listings.
type RestListingHandler struct {
	listingService services.IListingService
	storageService storage.IS3Storage
	imageEnqueuer  ImageEnqueuer
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(listingService services.IListingService, storageService storage.IS3Storage, imageEnqueuer ImageEnqueuer) *RestListingHandler {
	return &RestListingHandler{
		listingService: listingService,
		storageService: storageService,
		imageEnqueuer:  imageEnqueuer,
	}
}

func parseListingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return 0, false
	}
	return id, true
}

type createListingPayload struct {
	Type      string   `json:"type" binding:"required"`
	Location  string   `json:"location" binding:"required"`
	Price     float64  `json:"price" binding:"required"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	Area      *float64 `json:"area"`
	Features  string   `json:"features"`
	Amenities []string `json:"amenities"`
}

// CreateListing handles POST /v1/listing. New listings start pending and
// unverified; an admin approves them onto the market.
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var payload createListingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	listing, err := h.listingService.CreateListing(
		c.Request.Context(),
		&userID,
		payload.Type,
		payload.Location,
		payload.Price,
		payload.Bedrooms,
		payload.Bathrooms,
		payload.Area,
		payload.Features,
		payload.Amenities,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListingByID handles GET /v1/listing/:id. Pending, rejected and inactive
// listings are visible only to their owner and admins.
func (h *RestListingHandler) GetListingByID(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}

	if !listing.PubliclyVisible() {
		userID, authed := middleware.UserIDFromContext(c)
		isOwner := authed && listing.OwnerID != nil && *listing.OwnerID == userID
		if !isOwner && !c.GetBool(middleware.ContextKeyIsAdmin) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
	}

	c.JSON(http.StatusOK, listing)
}

// UpdateListing handles PATCH /v1/listing/:id (owner only).
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), listingID, userID, updates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// DeactivateListing handles POST /v1/listing/:id/deactivate (owner only).
func (h *RestListingHandler) DeactivateListing(c *gin.Context) {
	h.ownerTransition(c, h.listingService.DeactivateListing)
}

// ReactivateListing handles POST /v1/listing/:id/reactivate (owner only).
func (h *RestListingHandler) ReactivateListing(c *gin.Context) {
	h.ownerTransition(c, h.listingService.ReactivateListing)
}

func (h *RestListingHandler) ownerTransition(c *gin.Context, op func(ctx context.Context, listingID, ownerID int64) error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), listingID, userID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// GetMyListings handles GET /v1/user/me/listing
func (h *RestListingHandler) GetMyListings(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	listings, err := h.listingService.FindListingsByOwner(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, listings)
}

type presignImagePayload struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignImageUpload handles POST /v1/listing/:id/image/presign. Returns a
// pre-signed S3 PUT URL; the client uploads directly and then confirms.
func (h *RestListingHandler) PresignImageUpload(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	if !h.requireOwnership(c, listingID, userID) {
		return
	}

	var payload presignImagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	url, key, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), listingID, payload.Filename, payload.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": url,
		"key":        key,
	})
}

type confirmImagePayload struct {
	Key string `json:"key" binding:"required"`
}

// ConfirmImageUpload handles POST /v1/listing/:id/image/confirm. Enqueues the
// background normalization task for an uploaded photo.
func (h *RestListingHandler) ConfirmImageUpload(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	if !h.requireOwnership(c, listingID, userID) {
		return
	}

	var payload confirmImagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.imageEnqueuer.EnqueueImageProcess(c.Request.Context(), listingID, payload.Key); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule image processing"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Image queued for processing"})
}

func (h *RestListingHandler) requireOwnership(c *gin.Context, listingID, userID int64) bool {
	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return false
	}
	if listing.OwnerID == nil || *listing.OwnerID != userID {
		if !c.GetBool(middleware.ContextKeyIsAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the listing owner"})
			return false
		}
	}
	return true
}

// --- Admin moderation ---

// ApproveListing handles POST /v1/admin/listing/:id/approve
func (h *RestListingHandler) ApproveListing(c *gin.Context) {
	h.adminTransition(c, h.listingService.ApproveListing)
}

// RejectListing handles POST /v1/admin/listing/:id/reject
func (h *RestListingHandler) RejectListing(c *gin.Context) {
	h.adminTransition(c, h.listingService.RejectListing)
}

// DeleteListing handles DELETE /v1/admin/listing/:id
func (h *RestListingHandler) DeleteListing(c *gin.Context) {
	h.adminTransition(c, h.listingService.DeleteListing)
}

func (h *RestListingHandler) adminTransition(c *gin.Context, op func(ctx context.Context, listingID int64) error) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), listingID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}
