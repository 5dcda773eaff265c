package dto

import (
	"encoding/json"

	"consultation/internal/domains/appointment/model"
	"consultation/shared"
	gDto "consultation/shared/dto"
)

// CreateAppointmentRequest is a booking request. Shape limits only; the ordered booking
// rules are applied by the validation package so their messages come out in order.
type CreateAppointmentRequest struct {
	ConsultationID    string  `json:"consultation_id"     validate:"omitempty,max=50"`
	CustomerID        string  `json:"customer_id"         validate:"omitempty,max=50"`
	StaffID           *string `json:"staff_id"            validate:"omitempty,max=50"`
	Date              string  `json:"date"                validate:"omitempty,max=20"`
	Slot              string  `json:"slot"                validate:"omitempty,max=20"`
	MeetingType       string  `json:"meeting_type"        validate:"omitempty,max=20"`
	CustomerAddressID *string `json:"customer_address_id" validate:"omitempty,max=50"`
	OrgAddressID      *string `json:"org_address_id"      validate:"omitempty,max=50"`
	Notes             *string `json:"notes"`
	PaymentMode       string  `json:"payment_mode"        validate:"omitempty,max=20"`
	TermsConditions   bool    `json:"terms_conditions"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,max=20"`
	Slot string `json:"slot" validate:"required,max=20"`
}

// UpdateAppointmentRequest is a partial update; nil fields are left unchanged.
type UpdateAppointmentRequest struct {
	AppointmentStatus *string `json:"appointment_status" validate:"omitempty,max=20"`
	Notes             *string `json:"notes"`
	PaymentMode       *string `json:"payment_mode"       validate:"omitempty,max=20"`
	StaffID           *string `json:"staff_id"           validate:"omitempty,max=50"`
}

func (r UpdateAppointmentRequest) IsEmpty() bool {
	return r.AppointmentStatus == nil && r.Notes == nil && r.PaymentMode == nil && r.StaffID == nil
}

type AppointmentResponse struct {
	ID                string          `json:"id"`
	Organisation      string          `json:"organisation"`
	ConsultationID    string          `json:"consultation_id"`
	StaffID           *string         `json:"staff_id"`
	CustomerID        string          `json:"customer_id"`
	Date              string          `json:"date"`
	Slot              string          `json:"slot"`
	AppointmentStatus string          `json:"appointment_status"`
	MeetingType       string          `json:"meeting_type"`
	PaymentMode       string          `json:"payment_mode"`
	PaymentStatus     string          `json:"payment_status"`
	CustomerAddressID *string         `json:"customer_address_id"`
	OrgAddressID      *string         `json:"org_address_id"`
	Notes             *string         `json:"notes"`
	DisplayBookingID  string          `json:"display_booking_id"`
	MeetingInfo       json.RawMessage `json:"meeting_info"`
	Amount            int             `json:"amount"`
	IsPaid            bool            `json:"is_paid"`
	TermsConditions   bool            `json:"terms_conditions"`
	IsActive          bool            `json:"is_active"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(appointment model.Appointment) {
	r.ID = appointment.ID
	r.Organisation = appointment.Organisation
	r.ConsultationID = appointment.ConsultationID
	r.StaffID = appointment.StaffID
	r.CustomerID = appointment.CustomerID
	r.Date = appointment.Date
	r.Slot = appointment.Slot
	r.AppointmentStatus = appointment.AppointmentStatus
	r.MeetingType = appointment.MeetingType
	r.PaymentMode = appointment.PaymentMode
	r.PaymentStatus = appointment.PaymentStatus
	r.CustomerAddressID = appointment.CustomerAddressID
	r.OrgAddressID = appointment.OrgAddressID
	r.Notes = appointment.Notes
	r.DisplayBookingID = appointment.DisplayBookingID
	r.MeetingInfo = appointment.Meeting()
	r.Amount = appointment.Amount
	r.IsPaid = appointment.IsPaid
	r.TermsConditions = appointment.TermsConditions
	r.IsActive = appointment.IsActive
	r.Metadata.FromModel(appointment.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(appointments []model.Appointment, total, limit int) {
	r.Appointments = make([]AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		r.Appointments[i].FromModel(appointment)
	}

	r.TotalData = total
	r.TotalPage = shared.CalculateTotalPage(total, limit)
}
