package limiter

import (
	"strconv"
	"time"

	"github.com/candid-app/candid_api/shared"
)

// Policy is configuration data, not behavior: a named attempt budget over
// a window.
type Policy struct {
	Key         string
	MaxAttempts int
	Window      time.Duration
}

var (
	SendMessage           = Policy{Key: shared.ActionSendMessage, MaxAttempts: 5, Window: time.Minute}
	CreateFeedbackRequest = Policy{Key: shared.ActionCreateFeedbackRequest, MaxAttempts: 3, Window: time.Hour}
	PasswordReset         = Policy{Key: shared.ActionPasswordReset, MaxAttempts: 3, Window: 15 * time.Minute}
	LoginAttempt          = Policy{Key: shared.ActionLoginAttempt, MaxAttempts: 5, Window: 15 * time.Minute}
	CopyShare             = Policy{Key: shared.ActionCopyShare, MaxAttempts: 10, Window: time.Minute}
)

func Policies() map[string]Policy {
	return map[string]Policy{
		SendMessage.Key:           SendMessage,
		CreateFeedbackRequest.Key: CreateFeedbackRequest,
		PasswordReset.Key:         PasswordReset,
		LoginAttempt.Key:          LoginAttempt,
		CopyShare.Key:             CopyShare,
	}
}

// Check applies a predefined policy and, when limited, reports the time
// remaining until the window resets.
func (l *Limiter) Check(p Policy, callerID string) (limited bool, resetIn time.Duration) {
	limited = l.IsRateLimited(p.Key, p.MaxAttempts, p.Window, callerID)
	if limited {
		resetIn = l.ResetTime(p.Key, p.Window, callerID)
	}
	return limited, resetIn
}

// FormatResetTime renders a wait duration for user-facing throttle
// messages, rounding up to the coarsest sensible unit.
func FormatResetTime(resetIn time.Duration) string {
	if resetIn <= 0 {
		return ""
	}

	minutes := int((resetIn + time.Minute - 1) / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	if minutes < 60 {
		return strconv.Itoa(minutes) + " minutes"
	}

	hours := (minutes + 59) / 60
	if hours == 1 {
		return "1 hour"
	}
	return strconv.Itoa(hours) + " hours"
}
