package handler

import (
	"net/http"

	"startup_market/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) BuyerDashboard(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.Buyer(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) SellerDashboard(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.Seller(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) ListingAnalytics(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	a, err := h.service.ListingAnalytics(c.Request.Context(), listingID, userID)
	if err != nil {
		respondError(c, err, "Failed to load listing analytics")
		return
	}
	c.JSON(http.StatusOK, a)
}

// RegisterDashboardRoutes registers the per-role dashboard routes
func (h *DashboardHandler) RegisterDashboardRoutes(rg *gin.RouterGroup, authMW, buyerMW, sellerMW gin.HandlerFunc) {
	rg.GET("/buyer/dashboard", authMW, buyerMW, h.BuyerDashboard)
	rg.GET("/seller/dashboard", authMW, sellerMW, h.SellerDashboard)
	rg.GET("/seller/listings/:id/analytics", authMW, sellerMW, h.ListingAnalytics)
}
