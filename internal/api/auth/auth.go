package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authService "github.com/samirwankhede/roomstats/internal/service/auth"
)

type AuthHandler struct {
	log *zap.Logger
	svc *authService.AuthService
}

func NewAuthHandler(log *zap.Logger, svc *authService.AuthService) *AuthHandler {
	return &AuthHandler{log: log, svc: svc}
}

func (h *AuthHandler) Register(r *gin.Engine) {
	r.POST("/v1/auth/token", h.token)
}

func (h *AuthHandler) token(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Error("Token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
