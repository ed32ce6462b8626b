package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/model"
	"github.com/candid-app/candid_api/shared"
)

// fakeStore is an in-memory FeedbackStore.
type fakeStore struct {
	requests map[string]*model.FeedbackRequest
	messages []model.AnonymousMessage

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{requests: make(map[string]*model.FeedbackRequest)}
}

func (s *fakeStore) CreateFeedbackRequest(request *model.FeedbackRequest) error {
	if s.failWith != nil {
		return s.failWith
	}
	if request.ID == "" {
		request.ID = "req-" + strconv.Itoa(len(s.requests)+1)
	}
	request.CreatedAt = time.Now()
	s.requests[request.ID] = request
	return nil
}

func (s *fakeStore) GetFeedbackRequestByID(id string) (*model.FeedbackRequest, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.requests[id], nil
}

func (s *fakeStore) GetFeedbackRequestBySlug(slug string) (*model.FeedbackRequest, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, r := range s.requests {
		if r.UniqueSlug == slug {
			return r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetActiveFeedbackRequestForUser(userID string) (*model.FeedbackRequest, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var newest *model.FeedbackRequest
	for _, r := range s.requests {
		if r.UserID != userID || !r.IsActive {
			continue
		}
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	return newest, nil
}

func (s *fakeStore) DeactivateFeedbackRequest(id, userID string) error {
	if s.failWith != nil {
		return s.failWith
	}
	r, ok := s.requests[id]
	if !ok || r.UserID != userID {
		return shared.NewNotFoundError("Feedback request not found")
	}
	r.IsActive = false
	return nil
}

func (s *fakeStore) CreateMessage(message *model.AnonymousMessage) error {
	if s.failWith != nil {
		return s.failWith
	}
	message.ID = "msg-" + strconv.Itoa(len(s.messages)+1)
	message.CreatedAt = time.Now()
	s.messages = append(s.messages, *message)
	return nil
}

func (s *fakeStore) GetMessagesForRequest(requestID string) ([]model.AnonymousMessage, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []model.AnonymousMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].FeedbackRequestID == requestID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

func (s *fakeStore) MarkMessagesRead(requestID string, messageIDs []string) error {
	if s.failWith != nil {
		return s.failWith
	}
	for i := range s.messages {
		if s.messages[i].FeedbackRequestID != requestID {
			continue
		}
		for _, id := range messageIDs {
			if s.messages[i].ID == id {
				s.messages[i].IsRead = true
			}
		}
	}
	return nil
}

func (s *fakeStore) CountUnreadMessages(requestID string) (int64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	var n int64
	for _, m := range s.messages {
		if m.FeedbackRequestID == requestID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// fakeGate is a scriptable RateLimitChecker.
type fakeGate struct {
	allowed bool
	resetIn time.Duration
	err     error

	calls int
}

func (g *fakeGate) Check(_ context.Context, _, _ string) (bool, *dto.RateLimitInfo, error) {
	g.calls++
	if g.err != nil {
		return false, nil, g.err
	}
	return g.allowed, &dto.RateLimitInfo{Allowed: g.allowed, ResetIn: g.resetIn}, nil
}

func newTestFeedbackService(store *fakeStore, gate *fakeGate) *FeedbackService {
	return &FeedbackService{store: store, gate: gate}
}

func activeRequest(store *fakeStore, id, userID string) *model.FeedbackRequest {
	r := &model.FeedbackRequest{
		ID:         id,
		UniqueSlug: "alice123",
		Name:       "Alice",
		IsActive:   true,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}
	store.requests[id] = r
	return r
}

func TestSubmitMessage_Success(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	resp, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
		FeedbackRequestID: "req-1",
		Content:           "  Great job on the launch!  ",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, store.messages, 1)
	assert.Equal(t, "Great job on the launch!", store.messages[0].Content)
	assert.Equal(t, "req-1", store.messages[0].FeedbackRequestID)
	assert.False(t, store.messages[0].IsRead)
}

func TestSubmitMessage_MissingRequestID(t *testing.T) {
	store := newFakeStore()
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
		Content: "hello",
	})

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Empty(t, store.messages)
}

func TestSubmitMessage_RejectsInvalidContent(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	gate := &fakeGate{allowed: true}
	svc := newTestFeedbackService(store, gate)

	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
		{"control chars only", "\x00\x01\x02"},
		{"over length limit", strings.Repeat("a", dto.MaxMessageLength+1)},
		{"script tag", `<script>alert('xss')</script>`},
		{"event handler", `<img onerror=alert(1)>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
				FeedbackRequestID: "req-1",
				Content:           tc.content,
			})

			appErr, ok := shared.GetAppError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		})
	}

	// Rejected content never consumes rate-limit budget or reaches storage.
	assert.Zero(t, gate.calls)
	assert.Empty(t, store.messages)
}

func TestSubmitMessage_RateLimited(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{allowed: false, resetIn: 42 * time.Second})

	_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
		FeedbackRequestID: "req-1",
		Content:           "hello",
	})

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
	assert.Equal(t, map[string]interface{}{"reset_in_seconds": int64(42)}, appErr.Data)
	assert.Empty(t, store.messages)
}

func TestSubmitMessage_GateErrorFailsClosed(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{err: errors.New("redis unavailable")})

	_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
		FeedbackRequestID: "req-1",
		Content:           "hello",
	})

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Empty(t, store.messages)
}

func TestSubmitMessage_RequestNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
		FeedbackRequestID: "nope",
		Content:           "hello",
	})

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Empty(t, store.messages)
}

func TestSubmitMessage_InactiveRequest(t *testing.T) {
	store := newFakeStore()
	r := activeRequest(store, "req-1", "user-1")
	r.IsActive = false
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
		FeedbackRequestID: "req-1",
		Content:           "hello",
	})

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "This feedback request is no longer active", appErr.Message)
	assert.Empty(t, store.messages)
}

func TestCreateFeedbackRequest(t *testing.T) {
	t.Setenv("APP_BASE_URL", "")
	store := newFakeStore()
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	resp, err := svc.CreateFeedbackRequest("user-1", dto.CreateFeedbackRequestRequest{Name: "  Alice  "})

	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Name)
	assert.True(t, resp.IsActive)
	assert.True(t, strings.HasPrefix(resp.UniqueSlug, "alice"))
	assert.True(t, shared.ValidSlug(resp.UniqueSlug))
	assert.Equal(t, "https://candid-app.io/feedback/"+resp.UniqueSlug, resp.ShareURL)
}

func TestCreateFeedbackRequest_RejectsInvalidName(t *testing.T) {
	store := newFakeStore()
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	for _, name := range []string{"", "   ", "<b>Alice</b>", strings.Repeat("a", 101)} {
		_, err := svc.CreateFeedbackRequest("user-1", dto.CreateFeedbackRequestRequest{Name: name})

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok, "name %q should be rejected", name)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	}
	assert.Empty(t, store.requests)
}

func TestGenerateSlug(t *testing.T) {
	slug := GenerateSlug("Alice")
	assert.True(t, strings.HasPrefix(slug, "alice"))
	assert.True(t, shared.ValidSlug(slug))

	// Characters outside the slug set are dropped, never substituted.
	slug = GenerateSlug("Ali ce! <3")
	assert.True(t, strings.HasPrefix(slug, "alice3"))
	assert.True(t, shared.ValidSlug(slug))

	// A name with no usable characters still yields a valid slug.
	assert.True(t, shared.ValidSlug(GenerateSlug("日本語")))
}

func TestLookupBySlug(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	resp, err := svc.LookupBySlug("alice123")
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.ID)
	assert.Equal(t, "Alice", resp.Name)
	assert.True(t, resp.IsActive)

	_, err = svc.LookupBySlug("missing-slug")
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)

	_, err = svc.LookupBySlug("bad slug!")
	appErr, ok = shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestDeactivateFeedbackRequest(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	require.NoError(t, svc.DeactivateFeedbackRequest("user-1", "req-1"))
	assert.False(t, store.requests["req-1"].IsActive)

	// Another user's request is out of scope.
	activeRequest(store, "req-2", "user-2")
	err := svc.DeactivateFeedbackRequest("user-1", "req-2")
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.True(t, store.requests["req-2"].IsActive)
}

func TestGetInbox(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
			FeedbackRequestID: "req-1",
			Content:           content,
		})
		require.NoError(t, err)
	}
	store.messages[0].IsRead = true

	resp, err := svc.GetInbox("user-1")
	require.NoError(t, err)
	require.NotNil(t, resp.Request)
	assert.Equal(t, "req-1", resp.Request.ID)
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "third", resp.Messages[0].Content)
	assert.Equal(t, "first", resp.Messages[2].Content)
	assert.Equal(t, 2, resp.UnreadCount)
}

func TestGetInbox_NoActiveRequest(t *testing.T) {
	store := newFakeStore()
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	resp, err := svc.GetInbox("user-1")
	require.NoError(t, err)
	assert.Nil(t, resp.Request)
	assert.Empty(t, resp.Messages)
	assert.Zero(t, resp.UnreadCount)
}

func TestMarkMessagesRead(t *testing.T) {
	store := newFakeStore()
	activeRequest(store, "req-1", "user-1")
	svc := newTestFeedbackService(store, &fakeGate{allowed: true})

	for _, content := range []string{"first", "second"} {
		_, err := svc.SubmitMessage(context.Background(), "203.0.113.9", dto.SendMessageRequest{
			FeedbackRequestID: "req-1",
			Content:           content,
		})
		require.NoError(t, err)
	}

	err := svc.MarkMessagesRead("user-1", dto.MarkMessagesReadRequest{MessageIDs: []string{"msg-1"}})
	require.NoError(t, err)
	assert.True(t, store.messages[0].IsRead)
	assert.False(t, store.messages[1].IsRead)

	err = svc.MarkMessagesRead("user-1", dto.MarkMessagesReadRequest{})
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)

	err = svc.MarkMessagesRead("user-without-request", dto.MarkMessagesReadRequest{MessageIDs: []string{"msg-1"}})
	appErr, ok = shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}
