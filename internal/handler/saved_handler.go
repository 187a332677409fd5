package handler

import (
	"net/http"

	"startup_market/internal/service"

	"github.com/gin-gonic/gin"
)

// SavedListingHandler handles a buyer's bookmarks
type SavedListingHandler struct {
	service service.SavedListingService
}

// NewSavedListingHandler creates a new SavedListingHandler
func NewSavedListingHandler(s service.SavedListingService) *SavedListingHandler {
	return &SavedListingHandler{service: s}
}

type notesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// bindNotes accepts an empty body as empty notes
func bindNotes(c *gin.Context) (string, bool) {
	var req notesRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return "", false
	}
	return req.Notes, true
}

func (h *SavedListingHandler) GetSavedListings(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get saved listings")
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *SavedListingHandler) SaveListing(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	listingID, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	notes, ok := bindNotes(c)
	if !ok {
		return
	}

	saved, err := h.service.Save(c.Request.Context(), userID, listingID, notes)
	if err != nil {
		respondError(c, err, "Failed to save listing")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *SavedListingHandler) UpdateNotes(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	listingID, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	notes, ok := bindNotes(c)
	if !ok {
		return
	}

	if err := h.service.UpdateNotes(c.Request.Context(), userID, listingID, notes); err != nil {
		respondError(c, err, "Failed to update notes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notes updated"})
}

func (h *SavedListingHandler) RemoveSavedListing(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	listingID, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, listingID); err != nil {
		respondError(c, err, "Failed to remove saved listing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing removed from saved"})
}

// RegisterSavedListingRoutes registers the buyer bookmark routes
func (h *SavedListingHandler) RegisterSavedListingRoutes(rg *gin.RouterGroup, authMW, buyerMW gin.HandlerFunc) {
	savedRoutes := rg.Group("/buyer/saved-listings")
	savedRoutes.Use(authMW, buyerMW)
	{
		savedRoutes.GET("", h.GetSavedListings)
		savedRoutes.POST("/:listingId", h.SaveListing)
		savedRoutes.PUT("/:listingId", h.UpdateNotes)
		savedRoutes.DELETE("/:listingId", h.RemoveSavedListing)
	}
}
