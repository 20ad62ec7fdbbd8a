package models

import "time"

// ChangeRequestStatus captures workflow states for edit proposals.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "PENDING"
	ChangeRequestApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestRejected ChangeRequestStatus = "REJECTED"
)

// ChangeRequest stores a proposed employee edit awaiting admin review.
// Changes holds a JSON object of column name to proposed value; its key
// set is constrained to the editable column whitelist at submission and
// re-checked at decision time.
type ChangeRequest struct {
	ID          string              `db:"id" json:"id"`
	EmployeeID  string              `db:"employee_id" json:"employee_id"`
	RequestedBy string              `db:"requested_by" json:"requested_by"`
	Changes     []byte              `db:"changes" json:"changes"`
	Status      ChangeRequestStatus `db:"status" json:"status"`
	AdminNote   *string             `db:"admin_note" json:"admin_note,omitempty"`
	IsRead      bool                `db:"is_read" json:"is_read"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time          `db:"processed_at" json:"processed_at,omitempty"`
}

// PendingChangeRequest is a list row joined with requester and target names.
type PendingChangeRequest struct {
	ID            string    `db:"id" json:"id"`
	EmployeeID    string    `db:"employee_id" json:"employee_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	RequesterName string    `db:"requester_name" json:"requester_name"`
	NamaPegawai   string    `db:"nama_pegawai" json:"nama_pegawai"`
}

// ChangeHistoryEvent is one timeline entry for a record's edit history.
// A decided request yields two events: the submission and the decision.
type ChangeHistoryEvent struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Actor     string    `json:"actor"`
	Status    string    `json:"status"`
	AdminNote string    `json:"admin_note"`
	Kind      string    `json:"kind"`
}

// FieldDiff describes one proposed field against its current value.
type FieldDiff struct {
	Column   string      `json:"column"`
	Current  interface{} `json:"current"`
	Proposed interface{} `json:"proposed"`
	Changed  bool        `json:"changed"`
}

// ChangeRequestDiff is the review view for a pending request.
type ChangeRequestDiff struct {
	Request  *ChangeRequest         `json:"request"`
	Employee *Employee              `json:"employee"`
	Proposed map[string]interface{} `json:"proposed"`
	Fields   []FieldDiff            `json:"fields"`
}
