package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myruppin/portal-companion/internal/models"
	"github.com/myruppin/portal-companion/internal/service"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
	"github.com/myruppin/portal-companion/pkg/response"
)

// AuthHandler exposes login and token lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
	home *service.HomeService
}

// NewAuthHandler constructs AuthHandler. home may be nil; when set, its cache
// is dropped on login and logout so the next home view reflects the new user.
func NewAuthHandler(auth *service.AuthService, home *service.HomeService) *AuthHandler {
	return &AuthHandler{auth: auth, home: home}
}

// Login exchanges student credentials for a portal token and stores both.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	info, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.home != nil {
		h.home.Invalidate()
	}
	response.JSON(c, http.StatusOK, info)
}

// Refresh re-logs in with the stored credentials.
func (h *AuthHandler) Refresh(c *gin.Context) {
	info, err := h.auth.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// Status reports whether a token is stored and its expiry.
func (h *AuthHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.auth.Status(c.Request.Context()))
}

// Logout wipes all stored credentials and cached state.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	if h.home != nil {
		h.home.Invalidate()
	}
	response.NoContent(c)
}
