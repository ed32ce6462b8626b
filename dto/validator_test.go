package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendMessageRequest_Validate(t *testing.T) {
	valid := SendMessageRequest{
		FeedbackRequestID: "0190e3a2-0000-7000-8000-000000000000",
		Content:           "Great job on the launch!",
	}
	assert.NoError(t, valid.Validate())

	missing := SendMessageRequest{Content: "hi"}
	assert.Error(t, missing.Validate())

	empty := SendMessageRequest{FeedbackRequestID: "abc", Content: ""}
	assert.Error(t, empty.Validate())

	atLimit := SendMessageRequest{
		FeedbackRequestID: "abc",
		Content:           strings.Repeat("a", MaxMessageLength),
	}
	assert.NoError(t, atLimit.Validate())

	overLimit := SendMessageRequest{
		FeedbackRequestID: "abc",
		Content:           strings.Repeat("a", MaxMessageLength+1),
	}
	assert.Error(t, overLimit.Validate())

	script := SendMessageRequest{
		FeedbackRequestID: "abc",
		Content:           `<script>alert('xss')</script>`,
	}
	assert.Error(t, script.Validate())
}

func TestSendMessageRequest_Normalize(t *testing.T) {
	req := SendMessageRequest{Content: "  hello\x00 there\x08  "}
	req.Normalize()
	assert.Equal(t, "hello there", req.Content)

	// Whitespace-only content normalizes to empty, which then fails required.
	req = SendMessageRequest{FeedbackRequestID: "abc", Content: "   \x00  "}
	req.Normalize()
	assert.Equal(t, "", req.Content)
	assert.Error(t, req.Validate())
}

func TestCreateFeedbackRequestRequest_Validate(t *testing.T) {
	assert.NoError(t, CreateFeedbackRequestRequest{Name: "Alice"}.Validate())
	assert.NoError(t, CreateFeedbackRequestRequest{Name: "Q3 Retro, Team A!"}.Validate())

	assert.Error(t, CreateFeedbackRequestRequest{Name: ""}.Validate())
	assert.Error(t, CreateFeedbackRequestRequest{Name: strings.Repeat("a", 101)}.Validate())
	assert.Error(t, CreateFeedbackRequestRequest{Name: "<b>Alice</b>"}.Validate())
	assert.Error(t, CreateFeedbackRequestRequest{Name: "Alice; DROP TABLE"}.Validate())
}

func TestMarkMessagesReadRequest_Validate(t *testing.T) {
	assert.NoError(t, MarkMessagesReadRequest{MessageIDs: []string{"id-1", "id-2"}}.Validate())
	assert.Error(t, MarkMessagesReadRequest{}.Validate())
	assert.Error(t, MarkMessagesReadRequest{MessageIDs: []string{}}.Validate())
	assert.Error(t, MarkMessagesReadRequest{MessageIDs: []string{"id-1", ""}}.Validate())
}

func TestRegisterRequest_Validate(t *testing.T) {
	assert.NoError(t, RegisterRequest{Email: "a@b.io", Password: "passw0rd"}.Validate())

	assert.Error(t, RegisterRequest{Email: "not-an-email", Password: "passw0rd"}.Validate())
	assert.Error(t, RegisterRequest{Email: "a@b.io", Password: "short1"}.Validate())
	assert.Error(t, RegisterRequest{Email: "a@b.io", Password: "lettersonly"}.Validate())
	assert.Error(t, RegisterRequest{Email: "a@b.io", Password: "12345678"}.Validate())
}

func TestFirstValidationMessage(t *testing.T) {
	err := SendMessageRequest{FeedbackRequestID: "abc", Content: "<script>x</script>"}.Validate()
	assert.Equal(t, "Content contains markup that is not allowed", FirstValidationMessage(err))

	err = SendMessageRequest{FeedbackRequestID: "abc", Content: strings.Repeat("a", 2001)}.Validate()
	assert.Equal(t, "Content must be at most 2000 characters", FirstValidationMessage(err))

	err = SendMessageRequest{FeedbackRequestID: "abc"}.Validate()
	assert.Equal(t, "Content is required", FirstValidationMessage(err))
}

func TestCreateValidationErrorResponse(t *testing.T) {
	err := RegisterRequest{}.Validate()
	resp := CreateValidationErrorResponse(err)

	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Len(t, resp.Errors, 2)
}
