package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/pagination"
	"smartspend/internal/services"
)

// ChatHandler handles chatbot requests.
type ChatHandler struct {
	chatService services.ChatServicer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService services.ChatServicer) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatMessageRequest represents a prompt sent to the chatbot
type ChatMessageRequest struct {
	Message string `json:"message" binding:"required,max=500"`
}

// GetHistory returns the chat history, oldest first
// @Summary     Get chat history
// @Description A first visit seeds the history with a welcome message.
// @Tags        chat
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.ChatMessage] "Chat history"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /chat/messages [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	history, err := h.chatService.GetHistory(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// SendMessage answers a prompt
// @Summary     Send a chat message
// @Tags        chat
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChatMessageRequest true "Prompt"
// @Success     201 {object} services.ChatExchange "Stored prompt and reply"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	exchange, err := h.chatService.SendMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exchange)
}
