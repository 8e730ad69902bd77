package ports

import (
	"context"
	"time"

	"github.com/medicare/hospital-system/internal/core/domain"
)

// RegisterInput carries the form fields shared by every registration variant.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	NIC       string
	DOB       string
	Gender    string
	Password  string
	// Role is what the client asked for. Patient self-registration requires
	// it to be present but always creates a Patient.
	Role string
}

// AvatarUpload is an image file submitted with a doctor registration.
type AvatarUpload struct {
	Filename string
	Data     []byte
	// Oversize marks a file over the configured limit. Data is left empty.
	Oversize bool
}

// AddDoctorInput extends RegisterInput with the doctor-only fields.
type AddDoctorInput struct {
	RegisterInput
	DoctorDepartment string
	Avatar           *AvatarUpload
}

// LoginInput carries the login form.
type LoginInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// Session is a freshly issued signed token.
type Session struct {
	Token     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthResult is returned by flows that log the caller in.
type AuthResult struct {
	Account *domain.Account
	Session Session
}

// AccountService defines registration, login and account lookup use cases.
type AccountService interface {
	RegisterPatient(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	AddAdmin(ctx context.Context, in RegisterInput) (*domain.Account, error)
	AddDoctor(ctx context.Context, in AddDoctorInput) (*domain.Account, error)
	ListDoctors(ctx context.Context) ([]*domain.Account, error)
	CurrentAccount(ctx context.Context, id string) (*domain.Account, error)
	// Logout revokes the session identified by jti until expiresAt.
	// Revocation is best effort: the caller always clears the cookie.
	Logout(ctx context.Context, jti string, expiresAt time.Time)
}
