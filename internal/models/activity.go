package models

import "time"

// Activity action tags written to the audit trail.
const (
	ActionLogin          = "LOGIN"
	ActionCreateAnjab    = "CREATE_ANJAB"
	ActionUpdateAnjab    = "UPDATE_ANJAB"
	ActionDeleteAnjab    = "DELETE_ANJAB"
	ActionRequestUpdate  = "REQUEST_UPDATE"
	ActionVerifyApproved = "VERIFY_APPROVED"
	ActionVerifyRejected = "VERIFY_REJECTED"
	ActionUploadExcel    = "UPLOAD_EXCEL"
	ActionUserCreate     = "USER_CREATE"
)

// ActivityLog is an append-only audit trail record.
type ActivityLog struct {
	ID          string    `db:"id" json:"id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	Description string    `db:"description" json:"description"`
	IPAddress   *string   `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent   *string   `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ActivityLogEntry is an audit row joined with the acting user.
type ActivityLogEntry struct {
	ActivityLog
	Username *string   `db:"username" json:"username,omitempty"`
	Role     *UserRole `db:"role" json:"role,omitempty"`
}
