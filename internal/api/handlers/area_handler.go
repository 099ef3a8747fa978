package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

type AreaService interface {
	List(ctx context.Context) ([]domain.Area, error)
	Apply(ctx context.Context, action domain.AreaAction, area domain.Area) ([]domain.Area, error)
}

type AreaHandler struct {
	service AreaService
}

func NewAreaHandler(svc AreaService) *AreaHandler {
	return &AreaHandler{service: svc}
}

func (h *AreaHandler) List(c *gin.Context) {
	areas, err := h.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch areas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"areas": areas}, "count": len(areas)})
}

// Apply handles {"action": "add"|"update"|"delete", "area": {...}}.
func (h *AreaHandler) Apply(c *gin.Context) {
	var body struct {
		Action domain.AreaAction `json:"action"`
		Area   domain.Area       `json:"area"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid area request")
		return
	}

	areas, err := h.service.Apply(c.Request.Context(), body.Action, body.Area)
	if err != nil {
		respondServiceError(c, err, "Failed to manage areas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"areas": areas}, "count": len(areas)})
}
