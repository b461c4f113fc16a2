package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/constella-backend/internal/http/response"
	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
	"github.com/yungbote/constella-backend/internal/services"
)

type GraphHandler struct {
	starMap   services.StarMapService
	discovery services.DiscoveryService
}

func NewGraphHandler(starMap services.StarMapService, discovery services.DiscoveryService) *GraphHandler {
	return &GraphHandler{starMap: starMap, discovery: discovery}
}

// GET /api/graph?lang=en
func (h *GraphHandler) StarMap(c *gin.Context) {
	ctx := c.Request.Context()
	m, err := h.starMap.StarMap(ctx, ctxutil.UserID(ctx), c.Query("lang"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondData(c, m)
}

// GET /api/ship-log
func (h *GraphHandler) ShipLog(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := h.discovery.ShipLog(ctx, ctxutil.UserID(ctx))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondData(c, entries)
}
