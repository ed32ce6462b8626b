package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/limiter"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
}

type FeedbackServiceInterface interface {
	SubmitMessage(ctx context.Context, clientIP string, req dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	CreateFeedbackRequest(userID string, req dto.CreateFeedbackRequestRequest) (*dto.FeedbackRequestResponse, error)
	LookupBySlug(slug string) (*dto.PublicFeedbackRequestResponse, error)
	DeactivateFeedbackRequest(userID, requestID string) error
	GetInbox(userID string) (*dto.InboxResponse, error)
	MarkMessagesRead(userID string, req dto.MarkMessagesReadRequest) error
}

type ClientGateInterface interface {
	Gate(policy limiter.Policy) fiber.Handler
	ResetFor(policy limiter.Policy, c *fiber.Ctx)
}
