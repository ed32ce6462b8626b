package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/shared"
)

type FeedbackHandler struct {
	feedbackSvc FeedbackServiceInterface
}

func NewFeedbackHandler(feedbackSvc FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackSvc: feedbackSvc,
	}
}

// @Summary Send an anonymous message
// @Description Submit an anonymous message to an active feedback request
// @Tags feedback
// @Accept json
// @Produce json
// @Param sendRequest body dto.SendMessageRequest true "Message payload"
// @Success 200 {object} shared.Response{data=dto.SendMessageResponse}
// @Router /api/v1/messages [post]
func (h *FeedbackHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.feedbackSvc.SubmitMessage(c.UserContext(), shared.ClientIP(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Message sent", resp)
}

// @Summary Create a feedback request
// @Description Create a shareable anonymous-feedback link for the authenticated user
// @Tags feedback
// @Accept json
// @Produce json
// @Security Bearer
// @Param createRequest body dto.CreateFeedbackRequestRequest true "Display name"
// @Success 201 {object} shared.Response{data=dto.FeedbackRequestResponse}
// @Router /api/v1/feedback-requests [post]
func (h *FeedbackHandler) CreateFeedbackRequest(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateFeedbackRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.feedbackSvc.CreateFeedbackRequest(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Feedback request created", resp)
}

// @Summary Look up a feedback request by slug
// @Description Resolve a shareable link for the anonymous send page
// @Tags feedback
// @Produce json
// @Param slug path string true "Feedback request slug"
// @Success 200 {object} shared.Response{data=dto.PublicFeedbackRequestResponse}
// @Router /api/v1/feedback/{slug} [get]
func (h *FeedbackHandler) GetBySlug(c *fiber.Ctx) error {
	resp, err := h.feedbackSvc.LookupBySlug(c.Params("slug"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Deactivate a feedback request
// @Description Stop accepting new messages for a feedback request
// @Tags feedback
// @Produce json
// @Security Bearer
// @Param id path string true "Feedback request id"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/feedback-requests/{id} [delete]
func (h *FeedbackHandler) DeactivateFeedbackRequest(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.feedbackSvc.DeactivateFeedbackRequest(userID, c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Feedback request deactivated", nil)
}

// @Summary Get the owner inbox
// @Description Fetch the newest active feedback request with its messages, newest first
// @Tags inbox
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.InboxResponse}
// @Router /api/v1/inbox [get]
func (h *FeedbackHandler) GetInbox(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.feedbackSvc.GetInbox(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Mark messages read
// @Description Batch-flip is_read for messages in the owner's active request
// @Tags inbox
// @Accept json
// @Produce json
// @Security Bearer
// @Param markRequest body dto.MarkMessagesReadRequest true "Message ids"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/inbox/read [post]
func (h *FeedbackHandler) MarkMessagesRead(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.MarkMessagesReadRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := h.feedbackSvc.MarkMessagesRead(userID, req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Messages marked read", nil)
}
