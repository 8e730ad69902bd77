package handler

import (
	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

// --- Request types ---
// Presence and format rules live in the service so every entry point gets
// the same messages; the tags here only bound input size.

type registerRequest struct {
	FirstName string `json:"firstName" form:"firstName" validate:"max=64"`
	LastName  string `json:"lastName"  form:"lastName"  validate:"max=64"`
	Email     string `json:"email"     form:"email"     validate:"max=254"`
	Phone     string `json:"phone"     form:"phone"     validate:"max=32"`
	NIC       string `json:"nic"       form:"nic"       validate:"max=32"`
	DOB       string `json:"dob"       form:"dob"       validate:"max=64"`
	Gender    string `json:"gender"    form:"gender"    validate:"max=16"`
	Password  string `json:"password"  form:"password"  validate:"max=72"`
	// Role must be sent but never decides the account's role.
	Role string `json:"role"      form:"role"      validate:"max=16"`
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		NIC:       r.NIC,
		DOB:       r.DOB,
		Gender:    r.Gender,
		Password:  r.Password,
		Role:      r.Role,
	}
}

// addDoctorRequest arrives as multipart form data next to the docAvatar file.
type addDoctorRequest struct {
	FirstName        string `json:"firstName"        form:"firstName"        validate:"max=64"`
	LastName         string `json:"lastName"         form:"lastName"         validate:"max=64"`
	Email            string `json:"email"            form:"email"            validate:"max=254"`
	Phone            string `json:"phone"            form:"phone"            validate:"max=32"`
	NIC              string `json:"nic"              form:"nic"              validate:"max=32"`
	DOB              string `json:"dob"              form:"dob"              validate:"max=64"`
	Gender           string `json:"gender"           form:"gender"           validate:"max=16"`
	Password         string `json:"password"         form:"password"         validate:"max=72"`
	DoctorDepartment string `json:"doctorDepartment" form:"doctorDepartment" validate:"max=64"`
}

func (r addDoctorRequest) toInput(avatar *ports.AvatarUpload) ports.AddDoctorInput {
	return ports.AddDoctorInput{
		RegisterInput: ports.RegisterInput{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
			NIC:       r.NIC,
			DOB:       r.DOB,
			Gender:    r.Gender,
			Password:  r.Password,
		},
		DoctorDepartment: r.DoctorDepartment,
		Avatar:           avatar,
	}
}

type loginRequest struct {
	Email           string `json:"email"           form:"email"           validate:"max=254"`
	Password        string `json:"password"        form:"password"        validate:"max=72"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"max=72"`
	Role            string `json:"role"            form:"role"            validate:"max=16"`
}

// --- Response types ---

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type doctorResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Doctor  *domain.Account `json:"doctor"`
}

type doctorsResponse struct {
	Success bool              `json:"success"`
	Doctors []*domain.Account `json:"doctors"`
}

type userResponse struct {
	Success bool            `json:"success"`
	User    *domain.Account `json:"user"`
}
