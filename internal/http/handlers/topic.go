package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/http/response"
	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
	"github.com/yungbote/constella-backend/internal/services"
)

type TopicHandler struct {
	topics services.TopicService
}

func NewTopicHandler(topics services.TopicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

// GET /api/topics?id=<uuid>|name=<name>&lang=en
func (h *TopicHandler) GetTopic(c *gin.Context) {
	in := services.TopicLookup{
		Name:     strings.TrimSpace(c.Query("name")),
		Language: c.Query("lang"),
	}
	if raw := strings.TrimSpace(c.Query("id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_topic_id", fmt.Errorf("invalid id %q", raw))
			return
		}
		in.ID = id
	}
	ctx := c.Request.Context()
	view, err := h.topics.GetTopic(ctx, ctxutil.UserID(ctx), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondData(c, view)
}
