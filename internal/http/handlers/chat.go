package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/constella-backend/internal/http/response"
	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
	"github.com/yungbote/constella-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type sendChatReq struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	res, err := h.chat.Send(ctx, ctxutil.UserID(ctx), req.Message, req.Language)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondData(c, res)
}

// GET /api/chat
func (h *ChatHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	msgs, err := h.chat.History(ctx, ctxutil.UserID(ctx))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondData(c, msgs)
}
