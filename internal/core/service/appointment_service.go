package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

const (
	NotifyBooked        = "booked"
	NotifyStatusChanged = "status_changed"
)

type AppointmentService struct {
	repo     ports.AppointmentRepository
	accounts ports.AccountRepository
	queue    ports.NotificationQueue
	logger   zerolog.Logger
}

func NewAppointmentService(
	repo ports.AppointmentRepository,
	accounts ports.AccountRepository,
	queue ports.NotificationQueue,
	logger zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, accounts: accounts, queue: queue, logger: logger}
}

// Book creates a Pending appointment for the patient with the single doctor
// matching the requested name and department. The doctor's name is copied
// onto the appointment.
func (s *AppointmentService) Book(ctx context.Context, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	if anyBlank(in.FirstName, in.LastName, in.Email, in.Phone, in.NIC, in.DOB, in.Gender,
		in.AppointmentDate, in.Department, in.DoctorFirstName, in.DoctorLastName, in.Address) {
		return nil, domain.NewValidationError(msgFillFullForm)
	}

	dob, err := parseDOB(in.DOB)
	if err != nil {
		return nil, err
	}

	doctors, err := s.accounts.FindDoctors(ctx,
		strings.TrimSpace(in.DoctorFirstName),
		strings.TrimSpace(in.DoctorLastName),
		strings.TrimSpace(in.Department),
	)
	if err != nil {
		return nil, fmt.Errorf("book appointment: find doctor: %w", err)
	}
	switch len(doctors) {
	case 0:
		return nil, domain.NewNotFoundError("Doctor not found!")
	case 1:
	default:
		return nil, domain.NewConflictError("Doctors Conflict! Please Contact Through Email Or Phone!")
	}
	doctor := doctors[0]

	appt := &domain.Appointment{
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		NIC:             strings.TrimSpace(in.NIC),
		DOB:             dob,
		Gender:          strings.TrimSpace(in.Gender),
		AppointmentDate: strings.TrimSpace(in.AppointmentDate),
		Department:      strings.TrimSpace(in.Department),
		Doctor:          domain.DoctorRef{FirstName: doctor.FirstName, LastName: doctor.LastName},
		HasVisited:      in.HasVisited,
		Address:         strings.TrimSpace(in.Address),
		DoctorID:        doctor.ID,
		PatientID:       in.PatientID,
		Status:          domain.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := checkSchema(appt); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create appointment")
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", created.ID).
		Str("patient_id", created.PatientID).
		Str("doctor_id", created.DoctorID).
		Msg("appointment booked")

	s.notify(created, NotifyBooked)
	return created, nil
}

// ListAll returns every appointment.
func (s *AppointmentService) ListAll(ctx context.Context) ([]*domain.Appointment, error) {
	appts, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// ListForPatient returns the appointments booked by one patient.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	appts, err := s.repo.List(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return appts, nil
}

// Update applies an admin review. Re-applying the current status is a no-op.
func (s *AppointmentService) Update(ctx context.Context, in ports.UpdateAppointmentInput) (*domain.Appointment, error) {
	statusGiven := strings.TrimSpace(in.Status) != ""
	if !statusGiven && in.HasVisited == nil {
		return nil, domain.NewValidationError("Nothing To Update!")
	}

	next := domain.AppointmentStatus(strings.TrimSpace(in.Status))
	if statusGiven && !next.Valid() {
		return nil, domain.NewValidationError("Invalid Appointment Status!")
	}

	current, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, domain.NewNotFoundError("Appointment Not Found!")
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	upd := ports.AppointmentUpdate{HasVisited: in.HasVisited}
	statusChanged := statusGiven && next != current.Status
	if statusChanged {
		if !current.Status.CanTransitionTo(next) {
			return nil, domain.NewValidationError(
				fmt.Sprintf("Cannot Change Status From %s To %s!", current.Status, next))
		}
		upd.Status = &next
	}
	if upd.Status == nil && upd.HasVisited == nil {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, in.ID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, domain.NewNotFoundError("Appointment Not Found!")
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	if statusChanged {
		s.logger.Info().
			Str("appointment_id", updated.ID).
			Str("from", string(current.Status)).
			Str("to", string(updated.Status)).
			Msg("appointment status changed")
		s.notify(updated, NotifyStatusChanged)
	}
	return updated, nil
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return domain.NewNotFoundError("Appointment Not Found!")
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	s.logger.Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}

func (s *AppointmentService) notify(a *domain.Appointment, kind string) {
	if s.queue == nil {
		return
	}
	s.queue.Enqueue(ports.AppointmentNotification{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		Email:         a.Email,
		Phone:         a.Phone,
		PatientName:   a.FirstName + " " + a.LastName,
		DoctorName:    a.Doctor.FirstName + " " + a.Doctor.LastName,
		Date:          a.AppointmentDate,
		Status:        string(a.Status),
		Kind:          kind,
	})
}
