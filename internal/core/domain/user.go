package domain

import "time"

const (
	RolePatient = "Patient"
	RoleAdmin   = "Admin"
	RoleDoctor  = "Doctor"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Avatar references an image stored on the remote asset host.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Account models a registered identity with exactly one role.
// Role is fixed at creation; nothing in the service mutates it afterwards.
type Account struct {
	ID               string    `json:"_id"`
	FirstName        string    `json:"firstName"        validate:"min=3"`
	LastName         string    `json:"lastName"         validate:"min=3"`
	Email            string    `json:"email"            validate:"email"`
	Phone            string    `json:"phone"            validate:"len=10,number"`
	NIC              string    `json:"nic"              validate:"len=12,number"`
	DOB              time.Time `json:"dob"              validate:"required"`
	Gender           string    `json:"gender"           validate:"oneof=Male Female"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"             validate:"oneof=Patient Admin Doctor"`
	DoctorDepartment string    `json:"doctorDepartment,omitempty"`
	DocAvatar        *Avatar   `json:"docAvatar,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account holds the Admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
