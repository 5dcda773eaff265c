// Package validation applies the booking rules of a consultation to an appointment request.
package validation

//go:generate go run go.uber.org/mock/mockgen -source=./validation.go -destination=../mocks/validation_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"consultation/infras/otel"
	"consultation/internal/domains/appointment/model"
	"consultation/internal/domains/appointment/model/dto"
	consultationModel "consultation/internal/domains/consultation/model"
	"consultation/shared"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"
	"consultation/shared/timezone"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidMeetingType  = failure.BadRequestFromString("Invalid meeting type")
	ErrInvalidPaymentMode  = failure.BadRequestFromString("Invalid payment method")
	ErrInvalidStaff        = failure.BadRequestFromString("Invalid staff")
	ErrInvalidDate         = failure.BadRequestFromString("Invalid date")
	ErrTermsNotAccepted    = failure.BadRequestFromString("Please accept terms & conditions")
	ErrInvalidConsultation = failure.BadRequestFromString("Invalid consultation")
)

// OfferingFinder reads the pricing rows of a consultation.
type OfferingFinder interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]consultationModel.Offering, error)
}

type Validator interface {
	// Validate runs the booking rules in order and returns the first one that fails. It
	// clears the address and staff fields the meeting type and consultation do not use.
	Validate(ctx context.Context, req *dto.CreateAppointmentRequest, consultation consultationModel.Consultation, organisation string) error
	// Payable is the amount owed for a booking: the default row's final price plus the
	// staff surcharge when the consultation is staff priced.
	Payable(ctx context.Context, consultation consultationModel.Consultation, staffID *string, mode string) (int, error)
	// CheckStaff fails with ErrInvalidStaff unless staffID has a staff offering row for
	// the consultation in mode.
	CheckStaff(ctx context.Context, consultationID, organisation string, staffID *string, mode string) error
	CheckDate(date string) error
}

type Option func(*validatorImpl)

// WithClock replaces the source of "today".
func WithClock(now func() time.Time) Option {
	return func(v *validatorImpl) {
		v.now = now
	}
}

type validatorImpl struct {
	offerings OfferingFinder
	otel      otel.Otel
	now       func() time.Time
}

func New(offerings OfferingFinder, otel otel.Otel, opts ...Option) Validator {
	v := &validatorImpl{
		offerings: offerings,
		otel:      otel,
		now:       timezone.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

func (v *validatorImpl) Validate(ctx context.Context, req *dto.CreateAppointmentRequest, consultation consultationModel.Consultation, organisation string) (err error) {
	ctx, scope := v.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".validation.Validate")
	defer scope.End()
	defer scope.TraceIfError(err)

	offerings, err := v.active(ctx, consultation.ID, organisation)
	if err != nil {
		return err
	}

	if !offersMode(offerings, req.MeetingType) {
		return ErrInvalidMeetingType
	}

	switch req.MeetingType {
	case consultationModel.ModeOnline:
		req.CustomerAddressID = nil
		req.OrgAddressID = nil
	case consultationModel.ModeOffline:
		req.CustomerAddressID = nil
	case consultationModel.ModeDoorstep:
		req.OrgAddressID = nil
	}

	if !model.IsValidPaymentMode(req.PaymentMode) {
		return ErrInvalidPaymentMode
	}

	if consultation.IsStaffEnabled {
		if _, ok := staffRow(offerings, req.StaffID, req.MeetingType); !ok {
			return ErrInvalidStaff
		}
	} else {
		req.StaffID = nil
	}

	if err = v.CheckDate(req.Date); err != nil {
		return err
	}

	if !req.TermsConditions {
		return ErrTermsNotAccepted
	}

	return nil
}

func (v *validatorImpl) Payable(ctx context.Context, consultation consultationModel.Consultation, staffID *string, mode string) (amount int, err error) {
	ctx, scope := v.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".validation.Payable")
	defer scope.End()
	defer scope.TraceIfError(err)

	offerings, err := v.active(ctx, consultation.ID, consultation.Organisation)
	if err != nil {
		return 0, err
	}

	base, ok := defaultRow(offerings, mode)
	if !ok {
		return 0, ErrInvalidConsultation
	}

	if !consultation.IsStaffEnabled {
		return base.FinalPrice, nil
	}

	staff, ok := staffRow(offerings, staffID, mode)
	if !ok {
		return 0, ErrInvalidConsultation
	}

	return base.FinalPrice + staff.StaffSpecialPrice, nil
}

func (v *validatorImpl) CheckStaff(ctx context.Context, consultationID, organisation string, staffID *string, mode string) (err error) {
	ctx, scope := v.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".validation.CheckStaff")
	defer scope.End()
	defer scope.TraceIfError(err)

	offerings, err := v.active(ctx, consultationID, organisation)
	if err != nil {
		return err
	}

	if _, ok := staffRow(offerings, staffID, mode); !ok {
		return ErrInvalidStaff
	}

	return nil
}

// CheckDate accepts DD-MM-YYYY dates from today onwards.
func (v *validatorImpl) CheckDate(date string) error {
	day, err := time.ParseInLocation(constant.BookingDateLayout, date, timezone.GetLocation())
	if err != nil {
		return ErrInvalidDate
	}

	now := v.now().In(timezone.GetLocation())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if day.Before(today) {
		return ErrInvalidDate
	}

	return nil
}

func (v *validatorImpl) active(ctx context.Context, consultationID, organisation string) ([]consultationModel.Offering, error) {
	offerings, err := v.offerings.GetAll(ctx, gDto.QueryParams{}, shared.FilterActiveByOrganisation(
		organisation,
		consultationModel.OfferingTableName,
		gDto.Filter{
			Field:    consultationModel.FieldConsultationID,
			Value:    consultationID,
			Operator: gDto.FilterOperatorEq,
			Table:    consultationModel.OfferingTableName,
		},
	))
	if err != nil {
		log.Error().Err(err).Str("consultation_id", consultationID).Msg("failed to get consultation offerings")

		return nil, fmt.Errorf("failed to get consultation offerings: %w", err)
	}

	return offerings, nil
}

func offersMode(offerings []consultationModel.Offering, mode string) bool {
	for _, offering := range offerings {
		if offering.Mode == mode {
			return true
		}
	}

	return false
}

func defaultRow(offerings []consultationModel.Offering, mode string) (consultationModel.Offering, bool) {
	for _, offering := range offerings {
		if offering.StaffID == nil && !offering.IsStaffEnabled && offering.Mode == mode {
			return offering, true
		}
	}

	return consultationModel.Offering{}, false
}

func staffRow(offerings []consultationModel.Offering, staffID *string, mode string) (consultationModel.Offering, bool) {
	if staffID == nil || *staffID == constant.Empty {
		return consultationModel.Offering{}, false
	}

	for _, offering := range offerings {
		if offering.StaffID != nil && *offering.StaffID == *staffID && offering.IsStaffEnabled && offering.Mode == mode {
			return offering, true
		}
	}

	return consultationModel.Offering{}, false
}
