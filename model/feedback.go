package model

import "time"

type FeedbackRequest struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text;not null"`
	UniqueSlug string    `json:"unique_slug" gorm:"uniqueIndex;not null;size:64"`
	Name       string    `json:"name" gorm:"not null;size:100"`
	IsActive   bool      `json:"is_active" gorm:"default:true;not null;index"`
	UserID     string    `json:"user_id" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null"`
}

// AnonymousMessage deliberately carries no sender identity of any kind.
// The client IP seen during rate limiting is never stored with the row.
type AnonymousMessage struct {
	ID                string    `json:"id" gorm:"primaryKey;type:text;not null"`
	FeedbackRequestID string    `json:"feedback_request_id" gorm:"not null;index"`
	Content           string    `json:"content" gorm:"type:text;not null"`
	IsRead            bool      `json:"is_read" gorm:"default:false;not null"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null"`
}
