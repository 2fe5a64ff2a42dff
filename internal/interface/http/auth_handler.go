package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/semantic-faq/internal/domain/auth"
	apperrors "github.com/yanqian/semantic-faq/pkg/errors"
)

// AuthHandler serves editor login endpoints.
type AuthHandler struct {
	svc    auth.Service
	logger *slog.Logger
}

// NewAuthHandler constructs the auth transport.
func NewAuthHandler(svc auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger.With("component", "http.auth")}
}

// Login exchanges editor credentials for tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh issues a new token pair from a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, authError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated editor.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}
	profile, err := h.svc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, authError(err))
		return
	}
	c.JSON(http.StatusOK, profile)
}

func authError(err error) *HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeInvalidCredentials:
		return NewHTTPError(http.StatusUnauthorized, apperrors.CodeInvalidCredentials, errMessage(err), err)
	case apperrors.CodeInvalidToken:
		return NewHTTPError(http.StatusUnauthorized, apperrors.CodeInvalidToken, errMessage(err), err)
	case apperrors.CodeUserNotFound:
		return NewHTTPError(http.StatusNotFound, apperrors.CodeUserNotFound, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err)
	}
}
