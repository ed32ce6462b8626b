package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/limiter"
	"github.com/candid-app/candid_api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
	gateSvc ClientGateInterface
}

func NewAuthHandler(authSvc AuthServiceInterface, gateSvc ClientGateInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		gateSvc: gateSvc,
	}
}

// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login user
// @Description Authenticate user and return access token
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Login(req, shared.ClientIP(c))
	if err != nil {
		return err
	}

	// A successful sign-in clears the local login throttle for this caller.
	h.gateSvc.ResetFor(limiter.LoginAttempt, c)

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}
