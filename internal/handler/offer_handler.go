package handler

import (
	"net/http"

	"startup_market/internal/model"
	"startup_market/internal/service"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets a client retry an offer submission safely
const IdempotencyKeyHeader = "Idempotency-Key"

// OfferHandler handles buyer offers and seller responses
type OfferHandler struct {
	service service.OfferService
}

// NewOfferHandler creates a new OfferHandler
func NewOfferHandler(s service.OfferService) *OfferHandler {
	return &OfferHandler{service: s}
}

func (h *OfferHandler) SubmitOffer(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	offer, created, err := h.service.Submit(c.Request.Context(), userID, req, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		respondError(c, err, "Failed to submit offer")
		return
	}
	if !created {
		c.JSON(http.StatusOK, offer)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *OfferHandler) GetMyOffers(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	offers, err := h.service.BuyerOffers(c.Request.Context(), userID, optionalQuery(c, "status"))
	if err != nil {
		respondError(c, err, "Failed to get offers")
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *OfferHandler) GetOffer(c *gin.Context) {
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

	offer, err := h.service.Get(c.Request.Context(), id, userID, userRole)
	if err != nil {
		respondError(c, err, "Failed to get offer")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	offer, err := h.service.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err, "Failed to update offer")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) WithdrawOffer(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	offer, err := h.service.Withdraw(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "Failed to withdraw offer")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) GetReceivedOffers(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	offers, err := h.service.SellerOffers(c.Request.Context(), userID, optionalQuery(c, "status"))
	if err != nil {
		respondError(c, err, "Failed to get offers")
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *OfferHandler) GetListingOffers(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	offers, err := h.service.ListingOffers(c.Request.Context(), listingID, userID)
	if err != nil {
		respondError(c, err, "Failed to get listing offers")
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *OfferHandler) RespondToOffer(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}

	offer, err := h.service.Respond(c.Request.Context(), id, userID, status)
	if err != nil {
		respondError(c, err, "Failed to update offer")
		return
	}
	c.JSON(http.StatusOK, offer)
}

// RegisterOfferRoutes registers buyer and seller offer routes
func (h *OfferHandler) RegisterOfferRoutes(rg *gin.RouterGroup, authMW, buyerMW, sellerMW gin.HandlerFunc) {
	buyerRoutes := rg.Group("/buyer")
	buyerRoutes.Use(authMW, buyerMW)
	{
		buyerRoutes.POST("/offers", h.SubmitOffer)
		buyerRoutes.GET("/offers", h.GetMyOffers)
		buyerRoutes.GET("/offers/:id", h.GetOffer)
		buyerRoutes.PUT("/offers/:id", h.UpdateOffer)
		buyerRoutes.DELETE("/offers/:id", h.WithdrawOffer)
	}

	sellerRoutes := rg.Group("/seller")
	sellerRoutes.Use(authMW, sellerMW)
	{
		sellerRoutes.GET("/offers", h.GetReceivedOffers)
		sellerRoutes.GET("/listings/:id/offers", h.GetListingOffers)
		sellerRoutes.PUT("/offers/:id/status", h.RespondToOffer)
	}
}
