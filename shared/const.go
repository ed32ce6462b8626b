package shared

const (
	UserID = "user_id"

	ActionSendMessage           = "send_message"
	ActionCreateFeedbackRequest = "create_feedback_request"
	ActionPasswordReset         = "password_reset"
	ActionLoginAttempt          = "login_attempt"
	ActionCopyShare             = "copy_share"
	ActionRegister              = "register"
	ActionAPIGeneral            = "api_general"
)
