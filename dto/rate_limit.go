package dto

import "time"

type RateLimitInfo struct {
	Allowed   bool          `json:"allowed"`
	Remaining int           `json:"remaining"`
	ResetIn   time.Duration `json:"-"`
	ResetTime *time.Time    `json:"reset_time,omitempty"`
}
