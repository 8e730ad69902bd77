package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medicare/hospital-system/internal/core/ports"
)

// LogNotifier writes notifications to the structured log instead of
// delivering them to a patient. It stands in for an email or SMS provider.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) NotifyAppointment(ctx context.Context, in ports.AppointmentNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().
		Str("kind", in.Kind).
		Str("appointment_id", in.AppointmentID).
		Str("patient_id", in.PatientID).
		Str("email", in.Email).
		Str("patient", in.PatientName).
		Str("doctor", in.DoctorName).
		Str("date", in.Date).
		Str("status", in.Status).
		Msg("notification.appointment")
	return nil
}
