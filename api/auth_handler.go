package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"rentnest/errors"
	"rentnest/services"
)

type AuthHandler struct {
	log   *slog.Logger
	auths services.IAuthService
}

func NewAuthHandler(log *slog.Logger, auths services.IAuthService) *AuthHandler {
	return &AuthHandler{log: log, auths: auths}
}

type RegisterBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	token, err := h.auths.Register(body.Username, body.Email, body.Password)
	if err != nil {
		h.log.Warn("Registration failed", "email", body.Email, "error", err)
		return errors.MapToHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token.String()})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	token, err := h.auths.Login(body.Email, body.Password)
	if err != nil {
		h.log.Warn("Login failed", "email", body.Email, "error", err)
		return errors.MapToHTTPError(err)
	}

	return c.JSON(AuthResponse{Token: token.String()})
}
