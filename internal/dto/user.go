package dto

// CreateUserRequest registers a new account, optionally linking it to an
// employee record so the owner can submit edit proposals for it.
type CreateUserRequest struct {
	Username   string  `json:"username" validate:"required,min=3"`
	Password   string  `json:"password" validate:"required,min=6"`
	FullName   string  `json:"nama_lengkap" validate:"required"`
	Role       string  `json:"role" validate:"required,oneof=ADMIN KASUDIN GURU_TENDIK"`
	EmployeeID *string `json:"anjab_id"`
}
