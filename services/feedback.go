package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/model"
	"github.com/candid-app/candid_api/shared"
)

// FeedbackService owns the write path for anonymous messages and the
// owner-facing read path. SubmitMessage is the authoritative gate: it must
// stay safe to call from an untrusted, unauthenticated client.
type FeedbackService struct {
	appContext.DefaultService

	store FeedbackStore
	gate  RateLimitChecker
}

// FeedbackStore is the storage surface the service needs. Lookup methods
// return (nil, nil) when the row does not exist.
type FeedbackStore interface {
	CreateFeedbackRequest(request *model.FeedbackRequest) error
	GetFeedbackRequestByID(id string) (*model.FeedbackRequest, error)
	GetFeedbackRequestBySlug(slug string) (*model.FeedbackRequest, error)
	GetActiveFeedbackRequestForUser(userID string) (*model.FeedbackRequest, error)
	DeactivateFeedbackRequest(id, userID string) error
	CreateMessage(message *model.AnonymousMessage) error
	GetMessagesForRequest(requestID string) ([]model.AnonymousMessage, error)
	MarkMessagesRead(requestID string, messageIDs []string) error
	CountUnreadMessages(requestID string) (int64, error)
}

// RateLimitChecker is the persisted, IP-keyed rate limit consulted on
// every submission.
type RateLimitChecker interface {
	Check(ctx context.Context, identifier, endpointType string) (bool, *dto.RateLimitInfo, error)
}

const FEEDBACK_SVC = "feedback_svc"

func (svc FeedbackService) Id() string {
	return FEEDBACK_SVC
}

func (svc *FeedbackService) Start() error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.gate = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	return nil
}

// ==================== SUBMISSION GATE ====================

// SubmitMessage validates, throttles and persists one anonymous message.
// Order matters: content is rejected before the rate-limit counter is
// consulted, and a failing rate-limit check fails closed. Nothing about
// the sender is stored with the row, and the stored content is never
// echoed back.
func (svc *FeedbackService) SubmitMessage(ctx context.Context, clientIP string, req dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if req.FeedbackRequestID == "" {
		RecordMessageRejected("invalid_request")
		return nil, shared.NewBadRequestError(nil, "Invalid feedback_request_id")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		RecordMessageRejected("validation")
		return nil, shared.NewBadRequestError(err, dto.FirstValidationMessage(err))
	}

	allowed, info, err := svc.gate.Check(ctx, clientIP, shared.ActionSendMessage)
	if err != nil {
		// Fail closed: if we cannot verify the budget, the write is refused.
		RecordMessageRejected("rate_limit_error")
		return nil, shared.NewInternalError(err)
	}
	if !allowed {
		log.WithField("ip", clientIP).Info("message submission rate limited")
		RecordMessageRejected("rate_limited")
		return nil, shared.NewRateLimitError("Too many messages sent. Please wait before sending another.", info.ResetIn)
	}

	request, err := svc.store.GetFeedbackRequestByID(req.FeedbackRequestID)
	if err != nil {
		RecordMessageRejected("storage_error")
		return nil, shared.NewInternalError(err)
	}
	if request == nil {
		RecordMessageRejected("not_found")
		return nil, shared.NewNotFoundError("Feedback request not found")
	}
	if !request.IsActive {
		RecordMessageRejected("inactive")
		return nil, shared.NewBadRequestError(nil, "This feedback request is no longer active")
	}

	message := &model.AnonymousMessage{
		FeedbackRequestID: request.ID,
		Content:           req.Content,
	}
	if err := svc.store.CreateMessage(message); err != nil {
		RecordMessageRejected("storage_error")
		return nil, shared.NewInternalError(err)
	}

	log.WithField("feedback_request_id", request.ID).Info("message submitted")
	RecordMessageSubmitted()

	return &dto.SendMessageResponse{Success: true}, nil
}

// ==================== FEEDBACK REQUESTS ====================

func (svc *FeedbackService) CreateFeedbackRequest(userID string, req dto.CreateFeedbackRequestRequest) (*dto.FeedbackRequestResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, dto.FirstValidationMessage(err))
	}

	request := &model.FeedbackRequest{
		UniqueSlug: GenerateSlug(req.Name),
		Name:       req.Name,
		IsActive:   true,
		UserID:     userID,
	}
	if err := svc.store.CreateFeedbackRequest(request); err != nil {
		return nil, shared.NewInternalError(err)
	}

	return svc.toFeedbackRequestResponse(request), nil
}

// GenerateSlug builds a public identifier from the owner's display name:
// lowercased, reduced to the slug character set, suffixed with the current
// unix-millisecond timestamp so collisions are practically impossible.
func GenerateSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String() + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// LookupBySlug resolves a shareable link target for an anonymous visitor.
func (svc *FeedbackService) LookupBySlug(slug string) (*dto.PublicFeedbackRequestResponse, error) {
	if !shared.ValidSlug(slug) {
		return nil, shared.NewBadRequestError(shared.ErrInvalidSlug, "Invalid feedback link")
	}

	request, err := svc.store.GetFeedbackRequestBySlug(slug)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	if request == nil {
		return nil, shared.NewNotFoundError("Feedback request not found")
	}

	return &dto.PublicFeedbackRequestResponse{
		ID:       request.ID,
		Name:     request.Name,
		IsActive: request.IsActive,
	}, nil
}

func (svc *FeedbackService) DeactivateFeedbackRequest(userID, requestID string) error {
	if err := svc.store.DeactivateFeedbackRequest(requestID, userID); err != nil {
		if appErr, ok := shared.GetAppError(err); ok {
			return appErr
		}
		return shared.NewNotFoundError("Feedback request not found")
	}
	return nil
}

// ==================== INBOX READ PATH ====================

// GetInbox returns the owner's newest active request with its messages
// newest-first. A missing active request is not an error; the response
// just carries a nil request.
func (svc *FeedbackService) GetInbox(userID string) (*dto.InboxResponse, error) {
	request, err := svc.store.GetActiveFeedbackRequestForUser(userID)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	if request == nil {
		return &dto.InboxResponse{Messages: []dto.MessageResponse{}}, nil
	}

	messages, err := svc.store.GetMessagesForRequest(request.ID)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	resp := &dto.InboxResponse{
		Request:  svc.toFeedbackRequestResponse(request),
		Messages: make([]dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		if !m.IsRead {
			resp.UnreadCount++
		}
		resp.Messages = append(resp.Messages, dto.MessageResponse{
			ID:        m.ID,
			Content:   m.Content,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}

	return resp, nil
}

// MarkMessagesRead flips the given messages to read within the owner's
// active request.
func (svc *FeedbackService) MarkMessagesRead(userID string, req dto.MarkMessagesReadRequest) error {
	if err := req.Validate(); err != nil {
		return shared.NewBadRequestError(err, dto.FirstValidationMessage(err))
	}

	request, err := svc.store.GetActiveFeedbackRequestForUser(userID)
	if err != nil {
		return shared.NewInternalError(err)
	}
	if request == nil {
		return shared.NewNotFoundError("No active feedback request")
	}

	if err := svc.store.MarkMessagesRead(request.ID, req.MessageIDs); err != nil {
		return shared.NewInternalError(err)
	}
	return nil
}

func (svc *FeedbackService) toFeedbackRequestResponse(request *model.FeedbackRequest) *dto.FeedbackRequestResponse {
	resp := &dto.FeedbackRequestResponse{
		ID:         request.ID,
		UniqueSlug: request.UniqueSlug,
		Name:       request.Name,
		IsActive:   request.IsActive,
		CreatedAt:  request.CreatedAt,
	}

	if url, err := shared.FeedbackURL(request.UniqueSlug); err == nil {
		resp.ShareURL = url
	} else {
		log.WithError(err).WithField("slug", request.UniqueSlug).Warn("could not build share url")
	}

	return resp
}
