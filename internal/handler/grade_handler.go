package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myruppin/portal-companion/internal/portal"
	"github.com/myruppin/portal-companion/internal/service"
	"github.com/myruppin/portal-companion/internal/store"
	"github.com/myruppin/portal-companion/pkg/response"
)

// GradeHandler exposes the grades view and its exports.
type GradeHandler struct {
	client  *portal.Client
	exports *service.ExportService
	tokens  *store.TokenStore
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(client *portal.Client, exports *service.ExportService, tokens *store.TokenStore) *GradeHandler {
	return &GradeHandler{client: client, exports: exports, tokens: tokens}
}

// List returns the full grades view: averages plus collapsed courses with
// nested details.
func (h *GradeHandler) List(c *gin.Context) {
	token, err := h.tokens.Token(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.client.FetchGrades(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data)
}

// ExportCSV streams the grades table as CSV.
func (h *GradeHandler) ExportCSV(c *gin.Context) {
	data, err := h.exports.GradesCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="grades.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF streams the grades table as a PDF report.
func (h *GradeHandler) ExportPDF(c *gin.Context) {
	data, err := h.exports.GradesPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="grades.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
