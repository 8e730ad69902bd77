package domain

import "time"

// AppointmentStatus represents the review state of an appointment request.
type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "Pending"
	StatusAccepted AppointmentStatus = "Accepted"
	StatusRejected AppointmentStatus = "Rejected"
)

// validTransitions lists the statuses an appointment may move to.
// An appointment never returns to Pending once reviewed.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusRejected},
	StatusRejected: {StatusAccepted},
}

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DoctorRef is a snapshot of the doctor's name taken when the appointment
// is booked. It is not kept in sync with the doctor's account.
type DoctorRef struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName"  bson:"lastName"`
}

// Appointment is a patient's request to see a doctor in a department.
type Appointment struct {
	ID              string            `json:"_id"`
	FirstName       string            `json:"firstName"        validate:"min=3"`
	LastName        string            `json:"lastName"         validate:"min=3"`
	Email           string            `json:"email"            validate:"email"`
	Phone           string            `json:"phone"            validate:"len=10,number"`
	NIC             string            `json:"nic"              validate:"len=12,number"`
	DOB             time.Time         `json:"dob"              validate:"required"`
	Gender          string            `json:"gender"           validate:"oneof=Male Female"`
	AppointmentDate string            `json:"appointment_date"`
	Department      string            `json:"department"`
	Doctor          DoctorRef         `json:"doctor"`
	HasVisited      bool              `json:"hasVisited"`
	Address         string            `json:"address"`
	DoctorID        string            `json:"doctorId"`
	PatientID       string            `json:"patientId"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
}
