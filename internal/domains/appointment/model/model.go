package model

import (
	"bytes"
	"encoding/json"

	"consultation/shared/failure"
	"consultation/shared/model"

	"github.com/jmoiron/sqlx/types"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	// SlotIndexName is the partial unique index that keeps one active booking per slot.
	SlotIndexName = "appointments_active_slot_uidx"

	FieldID                = "id"
	FieldConsultationID    = "consultation_id"
	FieldStaffID           = "staff_id"
	FieldCustomerID        = "customer_id"
	FieldDate              = "date"
	FieldSlot              = "slot"
	FieldAppointmentStatus = "appointment_status"
	FieldPaymentMode       = "payment_mode"
	FieldPaymentStatus     = "payment_status"
	FieldNotes             = "notes"
	FieldMeetingInfo       = "meeting_info"
	FieldIsPaid            = "is_paid"
)

const (
	PaymentModeCOD    = "COD"
	PaymentModeOnline = "ON_LINE"

	PaymentStatusAwaited = "PAYMENT_AWAITED"
	PaymentStatusSuccess = "SUCCESS"
)

const (
	StatusHold      = "HOLD"
	StatusAccepted  = "ACCEPTED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
	StatusNoShow    = "NO_SHOW"
)

var ErrInvalidStatus = failure.BadRequestFromString("Invalid appointment status")

func IsValidStatus(status string) bool {
	switch status {
	case StatusHold, StatusAccepted, StatusRejected, StatusCompleted, StatusNoShow:
		return true
	default:
		return false
	}
}

func IsValidPaymentMode(mode string) bool {
	return mode == PaymentModeCOD || mode == PaymentModeOnline
}

// CanTransition reports whether an appointment in from may move to to. Any active
// status may move to any other; REJECTED is final.
func CanTransition(from, to string) error {
	if !IsValidStatus(to) {
		return ErrInvalidStatus
	}

	if from == to {
		return nil
	}

	if from == StatusRejected {
		return ErrInvalidStatus
	}

	return nil
}

type Appointment struct {
	ID                string         `db:"id"`
	Organisation      string         `db:"organisation"`
	ConsultationID    string         `db:"consultation_id"`
	StaffID           *string        `db:"staff_id"`
	CustomerID        string         `db:"customer_id"`
	Date              string         `db:"date"`
	Slot              string         `db:"slot"`
	AppointmentStatus string         `db:"appointment_status"`
	MeetingType       string         `db:"meeting_type"`
	PaymentMode       string         `db:"payment_mode"`
	PaymentStatus     string         `db:"payment_status"`
	CustomerAddressID *string        `db:"customer_address_id"`
	OrgAddressID      *string        `db:"org_address_id"`
	Notes             *string        `db:"notes"`
	DisplayBookingID  string         `db:"display_booking_id"`
	MeetingInfo       types.JSONText `db:"meeting_info"`
	Amount            int            `db:"amount"`
	IsPaid            bool           `db:"is_paid"`
	TermsConditions   bool           `db:"terms_conditions"`
	model.SoftDelete
	model.Metadata
}

// HasMeeting reports whether a video meeting has been provisioned.
func (a Appointment) HasMeeting() bool {
	trimmed := bytes.TrimSpace(a.MeetingInfo)

	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("{}")) && !bytes.Equal(trimmed, []byte("null"))
}

// Meeting returns the stored meeting descriptor as raw JSON, {} when there is none.
func (a Appointment) Meeting() json.RawMessage {
	if !a.HasMeeting() {
		return json.RawMessage("{}")
	}

	return json.RawMessage(a.MeetingInfo)
}

func (a Appointment) Staff() string {
	if a.StaffID == nil {
		return ""
	}

	return *a.StaffID
}
