package ports

import (
	"context"

	"github.com/medicare/hospital-system/internal/core/domain"
)

// AppointmentUpdate lists the mutable appointment fields. Nil means unchanged.
type AppointmentUpdate struct {
	Status     *domain.AppointmentStatus
	HasVisited *bool
}

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	// List returns every appointment when patientID is empty, otherwise only that patient's.
	List(ctx context.Context, patientID string) ([]*domain.Appointment, error)
	Update(ctx context.Context, id string, upd AppointmentUpdate) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) error
}
