package entity

import "time"

// AuditEntry records an authentication event.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}

const (
	AuditRegister       = "register"
	AuditLoginSuccess   = "login_success"
	AuditLoginFailed    = "login_failed"
	AuditOAuthLogin     = "oauth_login"
	AuditVerifyRequest  = "verify_request"
	AuditVerifyConfirm  = "verify_confirm"
	AuditResetRequest   = "reset_request"
	AuditResetConfirm   = "reset_confirm"
	AuditPasswordChange = "password_change"
)
