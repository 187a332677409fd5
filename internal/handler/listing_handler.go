package handler

import (
	"net/http"
	"strconv"

	"startup_market/internal/model"
	"startup_market/internal/service"

	"github.com/gin-gonic/gin"
)

// ListingHandler handles public browsing, seller listing management and
// admin moderation
type ListingHandler struct {
	service service.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(s service.ListingService) *ListingHandler {
	return &ListingHandler{service: s}
}

func parseBrowseQuery(c *gin.Context) (service.BrowseQuery, error) {
	q := service.BrowseQuery{
		Filters: model.ListingFilters{
			Category: c.Query("category"),
			Location: c.Query("location"),
			Keyword:  c.Query("keyword"),
		},
		SortBy: model.SortKey(c.DefaultQuery("sort", string(model.SortNewest))),
		Page:   1,
	}

	if v := c.Query("min_price"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, err
		}
		q.Filters.MinPrice = &n
	}
	if v := c.Query("max_price"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, err
		}
		q.Filters.MaxPrice = &n
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.Page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.PageSize = n
	}
	return q, nil
}

func (h *ListingHandler) Browse(c *gin.Context) {
	q, err := parseBrowseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameter: " + err.Error()})
		return
	}

	page, err := h.service.Browse(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to get listings")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get listing")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ListingHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": model.Categories})
}

func (h *ListingHandler) Locations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": model.Locations})
}

func (h *ListingHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create listing")
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) GetMyListings(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	listings, err := h.service.SellerListings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get listings")
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.service.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err, "Failed to update listing")
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	userRole, err := getAuthUserRole(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID, userRole); err != nil {
		respondError(c, err, "Failed to delete listing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}

func (h *ListingHandler) GetPendingListings(c *gin.Context) {
	listings, err := h.service.Pending(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get pending listings")
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) moderate(c *gin.Context, approve bool) {
	adminID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.service.Moderate(c.Request.Context(), id, adminID, approve)
	if err != nil {
		respondError(c, err, "Failed to moderate listing")
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) ApproveListing(c *gin.Context) { h.moderate(c, true) }
func (h *ListingHandler) RejectListing(c *gin.Context)  { h.moderate(c, false) }

// RegisterListingRoutes registers public, seller and admin listing routes
func (h *ListingHandler) RegisterListingRoutes(rg *gin.RouterGroup, authMW, sellerMW, adminMW gin.HandlerFunc) {
	publicRoutes := rg.Group("/public")
	{
		publicRoutes.GET("/listings", h.Browse)
		publicRoutes.GET("/listings/:id", h.GetListing)
		publicRoutes.GET("/categories", h.Categories)
		publicRoutes.GET("/locations", h.Locations)
		publicRoutes.GET("/stats", h.Stats)
	}

	sellerRoutes := rg.Group("/seller")
	sellerRoutes.Use(authMW, sellerMW)
	{
		sellerRoutes.POST("/listings", h.CreateListing)
		sellerRoutes.GET("/listings", h.GetMyListings)
		sellerRoutes.PUT("/listings/:id", h.UpdateListing)
		sellerRoutes.DELETE("/listings/:id", h.DeleteListing)
	}

	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW, adminMW)
	{
		adminRoutes.GET("/listings/pending", h.GetPendingListings)
		adminRoutes.PUT("/listings/:id/approve", h.ApproveListing)
		adminRoutes.PUT("/listings/:id/reject", h.RejectListing)
	}
}
