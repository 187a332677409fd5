package handler

import (
	"net/http"

	"startup_market/internal/model"
	"startup_market/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles chat between buyers and sellers
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(s service.MessageService) *MessageHandler {
	return &MessageHandler{service: s}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	listingID, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	otherID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	msgs, err := h.service.Conversation(c.Request.Context(), listingID, userID, otherID)
	if err != nil {
		respondError(c, err, "Failed to get conversation")
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// GetConversations lists the caller's chat threads
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	conversations, err := h.service.Conversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get conversations")
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	n, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to count unread messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, userID); err != nil {
		respondError(c, err, "Failed to mark message read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

// RegisterMessageRoutes registers chat routes
func (h *MessageHandler) RegisterMessageRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	chatRoutes := rg.Group("/chat")
	chatRoutes.Use(authMW)
	{
		chatRoutes.POST("/messages", h.SendMessage)
		chatRoutes.GET("/messages/:listingId/:userId", h.GetConversation)
		chatRoutes.GET("/users", h.GetConversations)
		chatRoutes.GET("/unread-count", h.GetUnreadCount)
		chatRoutes.PUT("/messages/:id/read", h.MarkRead)
	}
}
