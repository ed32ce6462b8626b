package dto

import (
	"strings"
	"time"

	"github.com/candid-app/candid_api/shared"
)

// ==================== FEEDBACK REQUEST DTOs ====================

type CreateFeedbackRequestRequest struct {
	Name string `json:"name" validate:"required,max=100,display_name" example:"Alice"`
}

func (r CreateFeedbackRequestRequest) Validate() error {
	return GetValidator().Struct(r)
}

type FeedbackRequestResponse struct {
	ID         string    `json:"id"`
	UniqueSlug string    `json:"unique_slug"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	ShareURL   string    `json:"share_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublicFeedbackRequestResponse is what an anonymous visitor may see about
// a request: enough to render the send page, nothing about the owner
// account.
type PublicFeedbackRequestResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ==================== MESSAGE DTOs ====================

const MaxMessageLength = 2000

type SendMessageRequest struct {
	FeedbackRequestID string `json:"feedback_request_id" validate:"required" example:"0190e3a2-..."`
	Content           string `json:"content" validate:"required,max=2000,safe_message" example:"Great job on the launch!"`
}

// Normalize trims the content and strips control characters before
// validation, so length and emptiness checks apply to what would actually
// be stored.
func (r *SendMessageRequest) Normalize() {
	r.Content = shared.StripControlChars(strings.TrimSpace(r.Content))
}

func (r SendMessageRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SendMessageResponse struct {
	Success bool `json:"success"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type InboxResponse struct {
	Request     *FeedbackRequestResponse `json:"request"`
	Messages    []MessageResponse        `json:"messages"`
	UnreadCount int                      `json:"unread_count"`
}

type MarkMessagesReadRequest struct {
	MessageIDs []string `json:"message_ids" validate:"required,min=1,dive,required"`
}

func (r MarkMessagesReadRequest) Validate() error {
	return GetValidator().Struct(r)
}
