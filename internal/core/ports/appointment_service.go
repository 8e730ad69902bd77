package ports

import (
	"context"

	"github.com/medicare/hospital-system/internal/core/domain"
)

// BookAppointmentInput is the patient's appointment form.
type BookAppointmentInput struct {
	PatientID       string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	NIC             string
	DOB             string
	Gender          string
	AppointmentDate string
	Department      string
	DoctorFirstName string
	DoctorLastName  string
	HasVisited      bool
	Address         string
}

// UpdateAppointmentInput carries an admin's review of an appointment.
type UpdateAppointmentInput struct {
	ID         string
	Status     string
	HasVisited *bool
}

// AppointmentService defines appointment use cases.
type AppointmentService interface {
	Book(ctx context.Context, in BookAppointmentInput) (*domain.Appointment, error)
	ListAll(ctx context.Context) ([]*domain.Appointment, error)
	ListForPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error)
	Update(ctx context.Context, in UpdateAppointmentInput) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) error
}
