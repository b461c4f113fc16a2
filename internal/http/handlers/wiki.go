package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/constella-backend/internal/http/response"
	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
	"github.com/yungbote/constella-backend/internal/services"
)

type WikiHandler struct {
	wiki services.WikiService
}

func NewWikiHandler(wiki services.WikiService) *WikiHandler {
	return &WikiHandler{wiki: wiki}
}

// POST /api/wiki
func (h *WikiHandler) Submit(c *gin.Context) {
	var req services.WikiSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	res, err := h.wiki.Submit(ctx, ctxutil.UserID(ctx), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": res})
}
