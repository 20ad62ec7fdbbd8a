package dto

// SubmitChangeRequest proposes field edits for one record. Changes is
// a raw column map; it is sanitized against the editable-column
// whitelist before anything is stored.
type SubmitChangeRequest struct {
	EmployeeID string                 `json:"anjab_id" validate:"required"`
	Changes    map[string]interface{} `json:"changes" validate:"required"`
}

// DecideChangeRequest carries the admin decision for a pending request.
type DecideChangeRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Note     string `json:"note"`
}
