package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casedesk/session-guard/internal/api/middleware"
	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" example:"Ana Ruiz"`
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"password123"`
}

type loginRequest struct {
	Email    string `json:"email" example:"demo@example.com"`
	Password string `json:"password" example:"demo123"`
}

type authResponse struct {
	Success bool              `json:"success"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

type refreshResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type meResponse struct {
	Success bool              `json:"success"`
	User    domain.PublicUser `json:"user"`
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      409   {object}  errorEnvelope
// @Failure      503   {object}  errorEnvelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError("invalid payload")
	}

	res, err := h.authService.Register(c.Request().Context(), ports.Profile{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Success: true, Token: res.Token, User: res.User})
}

// Login authenticates a user and returns a session token. Attempts are rate
// limited per client address.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      429   {object}  errorEnvelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError("invalid payload")
	}

	res, err := h.authService.Authenticate(c.Request().Context(), ports.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		ClientKey: "login:" + c.RealIP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Success: true, Token: res.Token, User: res.User})
}

// Refresh exchanges a current token for a new one with a fresh 24h expiry.
//
// @Summary      Refresh the session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  refreshResponse
// @Failure      401  {object}  errorEnvelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	tok, err := ctxToken(c)
	if err != nil {
		return err
	}

	fresh, err := h.authService.Refresh(c.Request().Context(), tok)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshResponse{Success: true, Token: fresh})
}

// Logout records the end of the session. The client discards its token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse
// @Failure      401  {object}  errorEnvelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	tok, err := ctxToken(c)
	if err != nil {
		return err
	}
	h.authService.Revoke(c.Request().Context(), tok)
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// TokenInfo reports the timing of the presented token, including expired
// ones.
//
// @Summary      Inspect the session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TokenInfo
// @Failure      401  {object}  errorEnvelope
// @Router       /auth/token [get]
func (h *AuthHandler) TokenInfo(c echo.Context) error {
	tok, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}

	info, err := h.authService.Inspect(tok)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// Me returns the identity carried by the presented token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorEnvelope
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		Success: true,
		User: domain.PublicUser{
			ID:    claims.UserID(),
			Name:  claims.Name(),
			Email: claims.Email(),
			Role:  claims.Role(),
		},
	})
}
