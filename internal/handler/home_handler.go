package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myruppin/portal-companion/internal/service"
	"github.com/myruppin/portal-companion/pkg/response"
)

// HomeHandler serves the aggregated home view.
type HomeHandler struct {
	home *service.HomeService
}

// NewHomeHandler constructs HomeHandler.
func NewHomeHandler(home *service.HomeService) *HomeHandler {
	return &HomeHandler{home: home}
}

// Get returns the current event, upcoming events and user name.
func (h *HomeHandler) Get(c *gin.Context) {
	data, err := h.home.HomeData(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data)
}
