package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"consultation/infras/directory"
	"consultation/infras/zoom"
	"consultation/internal/domains/appointment/model"
	consultationModel "consultation/internal/domains/consultation/model"
	"consultation/shared/constant"
)

const (
	emailType         = "EMAIL"
	emailSourceType   = "APPOINTMENTS"
	billingSourceType = "APPOINTMENT"
	alertTitle        = "Message"
	alertDescription  = "This is the new message"
)

// The payloads below are consumed by the email, notification, document and lead
// services. Field names and order are part of that contract.

type EmailMessage struct {
	To      []string `json:"to"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type EmailPayload struct {
	Type         string       `json:"type"`
	Message      EmailMessage `json:"message"`
	MediaURL     string       `json:"media_url"`
	Organisation string       `json:"organisation"`
	SourceType   string       `json:"source_type"`
	SourceID     string       `json:"source_id"`
	StartTime    string       `json:"start_time"`
	EndTime      string       `json:"end_time"`
	TimeZone     string       `json:"time_zone"`
	Info         string       `json:"info"`
	Token        string       `json:"token"`
}

type AlertPayload struct {
	Recipients   []string `json:"recipients"`
	SourceID     string   `json:"source_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Department   string   `json:"department"`
	Organisation string   `json:"organisation"`
	CreatedBy    string   `json:"created_by"`
	InitialTime  string   `json:"initial_time"`
	Duration     int      `json:"duration,string"`
	FinalTime    string   `json:"final_time"`
	Token        string   `json:"token"`
}

type InvoiceItem struct {
	ItemName string `json:"item_name"`
	Price    int    `json:"price"`
	Discount int    `json:"discount"`
	Tax      string `json:"tax"`
	Quantity int    `json:"quantity"`
}

type InvoicePayload struct {
	Organisation     string        `json:"organisation"`
	UserID           string        `json:"user_id"`
	SourceID         string        `json:"source_id"`
	Department       string        `json:"department"`
	AppointmentType  string        `json:"appointment_type"`
	BillingAddressID string        `json:"billing_address_id"`
	SourceType       string        `json:"source_type"`
	Items            []InvoiceItem `json:"items"`
	Total            int           `json:"total"`
	Recipients       []string      `json:"recipients"`
	Info             string        `json:"info"`
	Token            string        `json:"token"`
}

type LeadPayload struct {
	Organisation   string   `json:"organisation"`
	UserID         string   `json:"user_id"`
	SourceID       string   `json:"source_id"`
	SourceType     string   `json:"source_type"`
	StaffID        *string  `json:"staff_id"`
	ConsultationID string   `json:"consultation_id"`
	Recipients     []string `json:"recipients"`
}

// subject is everything a payload is built from.
type subject struct {
	appointment  model.Appointment
	consultation consultationModel.Consultation
	customer     *directory.UserInfo
	staff        *directory.UserInfo
	job          Job
}

func (s subject) meeting() zoom.Meeting {
	return zoom.ParseMeeting(s.appointment.Meeting())
}

func (s subject) online() bool {
	return s.appointment.MeetingType == consultationModel.ModeOnline
}

func (s subject) hasStaff() bool {
	return s.appointment.StaffID != nil
}

func fullName(info *directory.UserInfo) string {
	if info == nil {
		return ""
	}

	return strings.TrimSpace(info.FirstName + " " + info.LastName)
}

func emailOf(info *directory.UserInfo) string {
	if info == nil {
		return ""
	}

	return info.Email
}

func paragraphs(lines ...string) string {
	return strings.Join(lines, "\n\n")
}

func (s subject) email(to, subjectLine, mediaURL, body string) EmailPayload {
	return EmailPayload{
		Type: emailType,
		Message: EmailMessage{
			To:      []string{to},
			Subject: subjectLine,
			Body:    body,
		},
		MediaURL:     mediaURL,
		Organisation: s.appointment.Organisation,
		SourceType:   emailSourceType,
		SourceID:     s.appointment.ID,
		Token:        s.job.Token,
	}
}

// details lists date, time, optional staff name, mode and optional meeting link.
func (s subject) details(withStaff bool, meetingURL string) []string {
	lines := []string{
		"Date: " + s.appointment.Date,
		"Time: " + s.appointment.Slot,
	}

	if withStaff && s.hasStaff() {
		lines = append(lines, "Staff Name: "+fullName(s.staff))
	}

	lines = append(lines, "Mode: "+s.appointment.MeetingType)

	if s.online() {
		lines = append(lines, "Meeting URL: "+meetingURL)
	}

	return lines
}

var customerClosing = []string{
	"If you need to cancel or reschedule your appointment, please contact us at least {hours} hours in advance.",
	"We look forward to see you soon.",
	"NOTE:\nIf you opt for Offline Appointment, please arrive at least 15 minutes before your appointment time.",
}

func (s subject) customerConfirmation() EmailPayload {
	a := s.appointment

	lines := []string{
		fmt.Sprintf("Dear %s,", fullName(s.customer)),
		"We are pleased to confirm that your appointment has been confirmed.\nDetails of your appointment are as follows:",
	}
	lines = append(lines, s.details(true, s.meeting().JoinURL)...)
	lines = append(lines, customerClosing...)

	return s.email(emailOf(s.customer), fmt.Sprintf("Appointment Confirmed: %s %s", a.Date, a.Slot), "", paragraphs(lines...))
}

func (s subject) staffConfirmation() EmailPayload {
	a := s.appointment

	lines := []string{
		fmt.Sprintf("Dear %s,", fullName(s.staff)),
		fmt.Sprintf("This is to inform you that an appointment has been booked for you with %s.", fullName(s.customer)),
		"The details of the appointment are as follows:",
	}
	lines = append(lines, s.details(false, s.meeting().StartURL)...)
	lines = append(lines, "Thank you")

	return s.email(emailOf(s.staff), fmt.Sprintf("Appointment Booked %s %s", a.Date, a.Slot), "", paragraphs(lines...))
}

func (s subject) rescheduleNotice() EmailPayload {
	a := s.appointment

	with := ""
	if name := fullName(s.staff); name != "" {
		with = " with " + name
	}

	body := paragraphs(
		fmt.Sprintf("Dear %s,", fullName(s.customer)),
		fmt.Sprintf(
			"We regret to inform you that your appointment%s scheduled for %s %s has been rescheduled to %s & %s. We apologise for the inconvenience caused.",
			with, s.job.PreviousDate, s.job.PreviousSlot, a.Date, a.Slot,
		),
		"Please let us know if this rescheduled time work for you. If not we will be happy to reschedule it again.",
		"If you have any questions or concerns, please do not hesitate to contact us.",
	)

	return s.email(emailOf(s.customer), "Rescheduling Your Appointment", s.meeting().JoinURL, body)
}

func (s subject) rescheduleConfirmation() EmailPayload {
	a := s.appointment

	lines := []string{
		fmt.Sprintf("Dear %s,", fullName(s.customer)),
		fmt.Sprintf("As requested, your appointment scheduled for %s %s has been rescheduled.", s.job.PreviousDate, s.job.PreviousSlot),
		"Details of your appointment are as follows:",
	}
	lines = append(lines, s.details(true, s.meeting().JoinURL)...)
	lines = append(lines, customerClosing...)

	return s.email(emailOf(s.customer), fmt.Sprintf("Reschedule Confirmation %s %s", a.Date, a.Slot), s.meeting().JoinURL, paragraphs(lines...))
}

func (s subject) staffRescheduleNotice() EmailPayload {
	a := s.appointment

	lines := []string{
		fmt.Sprintf("Dear %s,", fullName(s.staff)),
		fmt.Sprintf(
			"This is to inform you that an appointment scheduled for you with %s on %s %s has been rescheduled to %s %s.",
			fullName(s.customer), s.job.PreviousDate, s.job.PreviousSlot, a.Date, a.Slot,
		),
		"The details of the appointment are as follows:",
	}
	lines = append(lines, s.details(false, s.meeting().StartURL)...)
	lines = append(lines, "Thank you")

	return s.email(emailOf(s.staff), fmt.Sprintf("Appointment Rescheduled %s %s", a.Date, a.Slot), s.meeting().JoinURL, paragraphs(lines...))
}

func (s subject) rejection() EmailPayload {
	a := s.appointment

	body := paragraphs(
		fmt.Sprintf("Dear %s,", fullName(s.customer)),
		"Thank you for your request to schedule an appointment. Unfortunately, we are unable to accommodate your request at this time.",
		"We apologise for the inconvenience caused. If you have any further questions or would like to reschedule, please do not hesitate to contact us.",
		"Thank you for your understanding.",
	)

	return s.email(emailOf(s.customer), fmt.Sprintf("Appointment Rejected: %s %s", a.Date, a.Slot), "", body)
}

// alert is addressed to the customer, the staff member ("" when unassigned) and the admin.
// It is always attributed to the customer.
func (s subject) alert() (AlertPayload, error) {
	a := s.appointment

	start, err := time.Parse(constant.BookingSlotLayout, a.Slot)
	if err != nil {
		return AlertPayload{}, fmt.Errorf("invalid slot %q: %w", a.Slot, err)
	}

	duration := s.consultation.Duration

	return AlertPayload{
		Recipients:   []string{a.CustomerID, a.Staff(), s.job.AdminID},
		SourceID:     a.ID,
		Title:        alertTitle,
		Description:  alertDescription,
		Department:   a.Organisation,
		Organisation: a.Organisation,
		CreatedBy:    a.CustomerID,
		InitialTime:  a.Slot,
		Duration:     duration,
		FinalTime:    start.Add(time.Duration(duration) * time.Minute).Format(constant.BookingSlotLayout),
		Token:        s.job.Token,
	}, nil
}

// invoice bills the default offering price plus any staff surcharge; the total is the
// amount fixed at booking.
func (s subject) invoice(offerings []consultationModel.Offering) (InvoicePayload, error) {
	a := s.appointment

	var (
		base      *consultationModel.Offering
		surcharge int
	)

	for i := range offerings {
		offering := offerings[i]
		if offering.Mode != a.MeetingType {
			continue
		}

		switch {
		case offering.StaffID == nil:
			base = &offering
		case s.consultation.IsStaffEnabled && a.StaffID != nil && *offering.StaffID == *a.StaffID:
			surcharge = offering.StaffSpecialPrice
		}
	}

	if base == nil {
		return InvoicePayload{}, fmt.Errorf("no %s offering for consultation %s", a.MeetingType, a.ConsultationID)
	}

	billingAddress := ""
	if a.MeetingType == consultationModel.ModeDoorstep && a.CustomerAddressID != nil {
		billingAddress = *a.CustomerAddressID
	}

	return InvoicePayload{
		Organisation:     a.Organisation,
		UserID:           a.CustomerID,
		SourceID:         a.ID,
		AppointmentType:  a.MeetingType,
		BillingAddressID: billingAddress,
		SourceType:       billingSourceType,
		Items: []InvoiceItem{{
			ItemName: s.consultation.Name,
			Price:    base.Price + surcharge,
			Discount: base.DiscountValue,
			Quantity: 1,
		}},
		Total:      a.Amount,
		Recipients: []string{},
		Token:      s.job.Token,
	}, nil
}

func (s subject) lead() LeadPayload {
	a := s.appointment

	return LeadPayload{
		Organisation:   a.Organisation,
		UserID:         a.CustomerID,
		SourceID:       a.ID,
		SourceType:     billingSourceType,
		StaffID:        a.StaffID,
		ConsultationID: a.ConsultationID,
		Recipients:     []string{},
	}
}
