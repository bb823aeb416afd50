package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myruppin/portal-companion/internal/service"
	"github.com/myruppin/portal-companion/pkg/response"
)

// PollerHandler triggers grade poll cycles on demand.
type PollerHandler struct {
	poller *service.GradePoller
}

// NewPollerHandler constructs PollerHandler.
func NewPollerHandler(poller *service.GradePoller) *PollerHandler {
	return &PollerHandler{poller: poller}
}

// Run executes one poll cycle synchronously and returns its outcome.
func (h *PollerHandler) Run(c *gin.Context) {
	outcome, err := h.poller.Poll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome)
}
