package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/store"
	"github.com/example/etailor/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	store    store.Store
	secret   string
	ttl      time.Duration
	onSignUp func()
}

// NewAuthHandler constructs an AuthHandler. onSignUp, when set, runs after
// every new account is stored.
func NewAuthHandler(s store.Store, secret string, ttl time.Duration, onSignUp func()) *AuthHandler {
	return &AuthHandler{store: s, secret: secret, ttl: ttl, onSignUp: onSignUp}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Register creates a new customer account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := models.Validate(req); err != nil {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	profile := models.Profile{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Role:         models.RoleCustomer,
		PasswordHash: passwordHash,
	}
	if err := h.store.CreateProfile(c.UserContext(), &profile); err != nil {
		return err
	}
	if h.onSignUp != nil {
		h.onSignUp()
	}

	return h.issue(c, fiber.StatusCreated, profile)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	profile, err := h.store.GetProfileByEmail(c.UserContext(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(profile.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	return h.issue(c, fiber.StatusOK, profile)
}

// Logout is stateless; the client discards its token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.store.GetProfile(c.UserContext(), identity.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUnauthenticated
		}
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}

func (h *AuthHandler) issue(c *fiber.Ctx, status int, profile models.Profile) error {
	token, err := utils.GenerateToken(h.secret, models.Identity{
		ID:    profile.ID,
		Email: profile.Email,
		Role:  profile.Role,
	}, h.ttl)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"user":    profile,
		"token":   token,
	})
}
