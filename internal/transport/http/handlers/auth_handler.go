package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/transport/http/dto"
	httpmw "github.com/cyberio/backend/internal/transport/http/middleware"
)

type AuthHandler struct {
	service ports.AuthService
	logger  *logger.Logger
}

func NewAuthHandler(service ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("auth_register_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if errs := req.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Email and password are required", Details: errs})
	}

	user, session, err := h.service.Register(c.UserContext(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Warnw("auth_register_failed", "error", err)
		return writeError(c, err, "Registration failed")
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		User:      dto.UserToResponse(user),
		SessionID: session.ID,
		Message:   "User registered successfully",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("auth_login_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	user, session, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err, "Login failed")
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		User:      dto.UserToResponse(user),
		SessionID: session.ID,
		Message:   "Login successful",
	})
}

func (h *AuthHandler) SocialLogin(c *fiber.Ctx) error {
	var req dto.SocialLoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("auth_social_login_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if errs := req.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Provider and email are required", Details: errs})
	}

	user, session, err := h.service.SocialLogin(c.UserContext(), ports.SocialLoginInput{
		Provider: req.Provider,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		h.logger.Warnw("auth_social_login_failed", "provider", req.Provider, "error", err)
		return writeError(c, err, "Social login failed")
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		User:      dto.UserToResponse(user),
		SessionID: session.ID,
		Message:   user.Provider + " login successful",
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	_ = c.BodyParser(&req)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = httpmw.SessionID(c)
	}

	if err := h.service.Logout(c.UserContext(), sessionID); err != nil {
		h.logger.Errorw("auth_logout_failed", "error", err)
		return writeError(c, err, "Logout failed")
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Logout successful"})
}

// Profile serves both /auth/profile/:session_id and the header-based
// /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		sessionID = httpmw.SessionID(c)
	}

	user, err := h.service.Profile(c.UserContext(), sessionID)
	if err != nil {
		return writeError(c, err, "Failed to get profile")
	}
	return c.JSON(dto.ProfileResponse{User: dto.UserToResponse(user)})
}
