package ports

import "context"

// AppointmentNotification describes a change a patient should hear about.
type AppointmentNotification struct {
	AppointmentID string
	PatientID     string
	Email         string
	Phone         string
	PatientName   string
	DoctorName    string
	Date          string
	Status        string
	Kind          string // "booked" or "status_changed"
}

// Notifier delivers appointment notifications.
type Notifier interface {
	NotifyAppointment(ctx context.Context, n AppointmentNotification) error
}

// NotificationQueue accepts notifications for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(n AppointmentNotification)
}
