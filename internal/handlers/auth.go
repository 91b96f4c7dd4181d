package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"shopping-list/internal/auth"
	"shopping-list/internal/logging"
	"shopping-list/internal/models"
)

type AuthHandler struct {
	jwtManager     *auth.JWTManager
	passphraseHash string
	validator      *validator.Validate
	logger         logging.Logger
}

func NewAuthHandler(jwtManager *auth.JWTManager, passphraseHash string, logger logging.Logger) *AuthHandler {
	return &AuthHandler{
		jwtManager:     jwtManager,
		passphraseHash: passphraseHash,
		validator:      validator.New(),
		logger:         logger,
	}
}

// IssueToken exchanges the device passphrase for a bearer token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !auth.CheckPassphrase(req.Passphrase, h.passphraseHash) {
		h.logger.Warn(c.Request.Context(), "token request rejected", "device", req.Device, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	device := req.Device
	if device == "" {
		device = "unnamed"
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(device)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: expiresAt})
}
