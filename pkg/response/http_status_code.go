package response

const (
	AuthLoginSuccess = 1 // Login Success
	AuthLoginFailed  = 2 // Login Failed

	ErrCodeSuccess         = 4001 // Success
	ErrCodeParamInvalid    = 4003 // Request body or path invalid
	ErrCodeQuestionMissing = 4004 // Question not found
	ErrCodeNotInPeriod     = 4005 // Outside the voting window
	ErrCodeChoiceMissing   = 4006 // No valid choice submitted
	ErrCodeUserExists      = 4007 // Username or email taken
	ErrCodeUnauthorized    = 4010 // Credentials rejected
	ErrCodeImageDisabled   = 4011 // Image storage not configured
	ErrCodeInternal        = 5000 // Unexpected failure
)

// message
var msg = map[int]string{
	// Auth
	AuthLoginSuccess: "login success",
	AuthLoginFailed:  "login failed",

	// Polls
	ErrCodeQuestionMissing: "Question not found",
	ErrCodeNotInPeriod:     "The question is not in the polling period.",
	ErrCodeChoiceMissing:   "You didn't select a choice.",

	// User
	ErrCodeUserExists:   "username or email already registered",
	ErrCodeUnauthorized: "invalid credentials",

	ErrCodeSuccess:       "success",
	ErrCodeParamInvalid:  "invalid request",
	ErrCodeImageDisabled: "image storage is not configured",
	ErrCodeInternal:      "internal server error",
}

// Message returns the user-facing text of code
func Message(code int) string {
	if m, ok := msg[code]; ok {
		return m
	}
	return msg[ErrCodeInternal]
}
