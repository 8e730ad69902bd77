package handler

import (
	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

type bookAppointmentRequest struct {
	FirstName       string `json:"firstName"        form:"firstName"        validate:"max=64"`
	LastName        string `json:"lastName"         form:"lastName"         validate:"max=64"`
	Email           string `json:"email"            form:"email"            validate:"max=254"`
	Phone           string `json:"phone"            form:"phone"            validate:"max=32"`
	NIC             string `json:"nic"              form:"nic"              validate:"max=32"`
	DOB             string `json:"dob"              form:"dob"              validate:"max=64"`
	Gender          string `json:"gender"           form:"gender"           validate:"max=16"`
	AppointmentDate string `json:"appointment_date" form:"appointment_date" validate:"max=64"`
	Department      string `json:"department"       form:"department"       validate:"max=64"`
	DoctorFirstName string `json:"doctor_firstName" form:"doctor_firstName" validate:"max=64"`
	DoctorLastName  string `json:"doctor_lastName"  form:"doctor_lastName"  validate:"max=64"`
	HasVisited      bool   `json:"hasVisited"       form:"hasVisited"`
	Address         string `json:"address"          form:"address"          validate:"max=256"`
}

func (r bookAppointmentRequest) toInput(patientID string) ports.BookAppointmentInput {
	return ports.BookAppointmentInput{
		PatientID:       patientID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		NIC:             r.NIC,
		DOB:             r.DOB,
		Gender:          r.Gender,
		AppointmentDate: r.AppointmentDate,
		Department:      r.Department,
		DoctorFirstName: r.DoctorFirstName,
		DoctorLastName:  r.DoctorLastName,
		HasVisited:      r.HasVisited,
		Address:         r.Address,
	}
}

type updateAppointmentRequest struct {
	Status     string `json:"status" validate:"max=16"`
	HasVisited *bool  `json:"hasVisited"`
}

type appointmentResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Appointment *domain.Appointment `json:"appointment"`
}

type appointmentsResponse struct {
	Success      bool                  `json:"success"`
	Appointments []*domain.Appointment `json:"appointments"`
}
