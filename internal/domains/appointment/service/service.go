package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"consultation/infras/otel"
	"consultation/internal/domains/appointment/model"
	"consultation/internal/domains/appointment/model/dto"
	"consultation/internal/domains/appointment/orchestrator"
	"consultation/internal/domains/appointment/repository"
	"consultation/internal/domains/appointment/slotguard"
	"consultation/internal/domains/appointment/validation"
	consultationModel "consultation/internal/domains/consultation/model"
	consultationRepo "consultation/internal/domains/consultation/repository"
	outboxModel "consultation/internal/domains/outbox/model"
	outboxRepo "consultation/internal/domains/outbox/repository"
	"consultation/shared"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"
	gModel "consultation/shared/model"
	"consultation/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	bookingIDPrefix = "OR-"
	bookingIDRange  = 100000
)

var (
	ErrMissingConsultation = failure.BadRequestFromString("Please provide consultation_id")
	ErrMissingCustomer     = failure.BadRequestFromString("Please provide customer_id")
	ErrEmptyUpdate         = failure.BadRequestFromString("No fields to update")
	ErrAppointmentNotFound = failure.NotFound("Appointment not found")
)

type Appointment interface {
	Create(ctx context.Context, req dto.CreateAppointmentRequest) (dto.AppointmentResponse, error)
	// Reschedule moves the appointment to a new date and slot. End users can only move
	// their own bookings.
	Reschedule(ctx context.Context, req dto.RescheduleRequest, id string) (dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateAppointmentRequest, id string) (dto.AppointmentResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (dto.AppointmentResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams) (dto.GetAppointmentsResponse, error)
	// ConfirmPayment records a successful online payment. A payment that is already
	// recorded is ignored.
	ConfirmPayment(ctx context.Context, id, organisation string) error
}

type serviceImpl struct {
	repo             repository.Appointment
	consultationRepo consultationRepo.Consultation
	outbox           outboxRepo.Outbox
	guard            slotguard.Guard
	validator        validation.Validator
	otel             otel.Otel
}

func New(
	repo repository.Appointment,
	consultationRepo consultationRepo.Consultation,
	outbox outboxRepo.Outbox,
	guard slotguard.Guard,
	validator validation.Validator,
	otel otel.Otel,
) Appointment {
	return &serviceImpl{
		repo:             repo,
		consultationRepo: consultationRepo,
		outbox:           outbox,
		guard:            guard,
		validator:        validator,
		otel:             otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	if req.ConsultationID == constant.Empty {
		return res, ErrMissingConsultation
	}

	if !actor.IsAdmin() {
		req.CustomerID = actor.UserID
	}

	if req.CustomerID == constant.Empty {
		return res, ErrMissingCustomer
	}

	consultation, err := s.consultationRepo.Get(ctx, shared.FilterActiveByOrganisation(actor.Organisation, consultationModel.TableName,
		gDto.Filter{Field: consultationModel.FieldID, Value: req.ConsultationID, Operator: gDto.FilterOperatorEq, Table: consultationModel.TableName},
	))
	if err != nil {
		log.Error().Err(err).Str("consultation_id", req.ConsultationID).Msg("failed to get consultation")

		return res, fmt.Errorf("failed to get consultation: %w", err)
	}

	if consultation.ID == constant.Empty {
		return res, validation.ErrInvalidConsultation
	}

	staffID := req.StaffID
	if !consultation.IsStaffEnabled {
		staffID = nil
	}

	if err = s.guard.Check(ctx, staffID, req.Date, req.Slot, actor.Organisation); err != nil {
		return res, err
	}

	if err = s.validator.Validate(ctx, &req, consultation, actor.Organisation); err != nil {
		return res, err
	}

	amount, err := s.validator.Payable(ctx, consultation, req.StaffID, req.MeetingType)
	if err != nil {
		return res, err
	}

	bookingID, err := displayBookingID()
	if err != nil {
		return res, err
	}

	now := timezone.Now()
	appointment := model.Appointment{
		ID:                uuid.NewString(),
		Organisation:      actor.Organisation,
		ConsultationID:    consultation.ID,
		StaffID:           req.StaffID,
		CustomerID:        req.CustomerID,
		Date:              req.Date,
		Slot:              req.Slot,
		AppointmentStatus: model.StatusHold,
		MeetingType:       req.MeetingType,
		PaymentMode:       req.PaymentMode,
		PaymentStatus:     model.PaymentStatusAwaited,
		CustomerAddressID: req.CustomerAddressID,
		OrgAddressID:      req.OrgAddressID,
		Notes:             req.Notes,
		DisplayBookingID:  bookingID,
		Amount:            amount,
		IsPaid:            false,
		TermsConditions:   req.TermsConditions,
		SoftDelete:        gModel.SoftDelete{IsActive: true},
		Metadata:          gModel.NewMetadata(now, actor.UserID),
	}

	err = s.commit(ctx, jobFor(orchestrator.KindCreated, appointment, actor), func(tx *sqlx.Tx) error {
		return s.repo.InsertTx(ctx, tx, appointment)
	})
	if err != nil {
		if errors.Is(slotguard.Translate(err), slotguard.ErrSlotUnavailable) {
			return res, slotguard.ErrSlotUnavailable
		}

		log.Error().Err(err).Msg("failed to create appointment")

		return res, fmt.Errorf("failed to create appointment: %w", err)
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) Reschedule(ctx context.Context, req dto.RescheduleRequest, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Reschedule")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	if err = s.validator.CheckDate(req.Date); err != nil {
		return res, err
	}

	appointment, err := s.find(ctx, actor, id)
	if err != nil {
		return res, err
	}

	if err = s.guard.Check(ctx, appointment.StaffID, req.Date, req.Slot, actor.Organisation); err != nil {
		return res, err
	}

	job := jobFor(orchestrator.KindRescheduled, appointment, actor)
	job.PreviousDate = appointment.Date
	job.PreviousSlot = appointment.Slot

	appointment.Date = req.Date
	appointment.Slot = req.Slot
	appointment.ModifiedAt = timezone.Now()
	appointment.ModifiedBy = actor.UserID

	err = s.commit(ctx, job, func(tx *sqlx.Tx) error {
		_, err := s.repo.UpdateTx(ctx, tx, map[string]any{
			model.FieldDate:          appointment.Date,
			model.FieldSlot:          appointment.Slot,
			constant.FieldModifiedAt: appointment.ModifiedAt,
			constant.FieldModifiedBy: appointment.ModifiedBy,
		}, byID(actor.Organisation, id))

		return err
	})
	if err != nil {
		if errors.Is(slotguard.Translate(err), slotguard.ErrSlotUnavailable) {
			return res, slotguard.ErrSlotUnavailable
		}

		log.Error().Err(err).Str("appointment_id", id).Msg("failed to reschedule appointment")

		return res, fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateAppointmentRequest, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.IsEmpty() {
		return res, ErrEmptyUpdate
	}

	actor := gModel.ActorFromContext(ctx)

	appointment, err := s.find(ctx, actor, id)
	if err != nil {
		return res, err
	}

	appointment.ModifiedAt = timezone.Now()
	appointment.ModifiedBy = actor.UserID

	fields := map[string]any{
		constant.FieldModifiedAt: appointment.ModifiedAt,
		constant.FieldModifiedBy: appointment.ModifiedBy,
	}

	statusChanged := false

	if req.AppointmentStatus != nil {
		if err = model.CanTransition(appointment.AppointmentStatus, *req.AppointmentStatus); err != nil {
			return res, err
		}

		if *req.AppointmentStatus != appointment.AppointmentStatus {
			statusChanged = true
			appointment.AppointmentStatus = *req.AppointmentStatus
			fields[model.FieldAppointmentStatus] = appointment.AppointmentStatus
		}

		if appointment.AppointmentStatus == model.StatusRejected {
			appointment.IsActive = false
			fields[constant.FieldIsActive] = false
		}
	}

	if req.PaymentMode != nil {
		if !model.IsValidPaymentMode(*req.PaymentMode) {
			return res, validation.ErrInvalidPaymentMode
		}

		appointment.PaymentMode = *req.PaymentMode
		fields[model.FieldPaymentMode] = appointment.PaymentMode
	}

	if req.Notes != nil {
		appointment.Notes = req.Notes
		fields[model.FieldNotes] = *req.Notes
	}

	if req.StaffID != nil {
		if err = s.validator.CheckStaff(ctx, appointment.ConsultationID, actor.Organisation, req.StaffID, appointment.MeetingType); err != nil {
			return res, err
		}

		appointment.StaffID = req.StaffID
		fields[model.FieldStaffID] = *req.StaffID
	}

	write := func(tx *sqlx.Tx) error {
		_, err := s.repo.UpdateTx(ctx, tx, fields, byID(actor.Organisation, id))

		return err
	}

	if statusChanged {
		job := jobFor(orchestrator.KindStatusChanged, appointment, actor)
		job.Status = appointment.AppointmentStatus

		err = s.commit(ctx, job, write)
	} else {
		err = s.repo.WithTransaction(ctx, write)
	}

	if err != nil {
		if errors.Is(slotguard.Translate(err), slotguard.ErrSlotUnavailable) {
			return res, slotguard.ErrSlotUnavailable
		}

		log.Error().Err(err).Str("appointment_id", id).Msg("failed to update appointment")

		return res, fmt.Errorf("failed to update appointment: %w", err)
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	if _, err = s.find(ctx, actor, id); err != nil {
		return err
	}

	if _, err = s.repo.Update(ctx, shared.SoftDeleteFields(actor.UserID), byID(actor.Organisation, id)); err != nil {
		log.Error().Err(err).Str("appointment_id", id).Msg("failed to delete appointment")

		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.find(ctx, gModel.ActorFromContext(ctx), id)
	if err != nil {
		return res, err
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)
	filter := shared.FilterActiveByOrganisation(actor.Organisation, model.TableName, ownedBy(actor)...)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	appointments, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointments")

		return res, fmt.Errorf("failed to get appointments: %w", err)
	}

	res.FromModels(appointments, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) ConfirmPayment(ctx context.Context, id, organisation string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.ConfirmPayment")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.Actor{Organisation: organisation, Type: constant.ActorEndUser}

	appointment, err := s.repo.Get(ctx, shared.FilterActiveByOrganisation(organisation, model.TableName,
		gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	))
	if err != nil {
		log.Error().Err(err).Str("appointment_id", id).Msg("failed to get appointment")

		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty || !appointment.IsActive {
		return ErrAppointmentNotFound
	}

	if appointment.PaymentStatus == model.PaymentStatusSuccess {
		log.Info().Str("appointment_id", id).Msg("payment already recorded")

		return nil
	}

	err = s.commit(ctx, jobFor(orchestrator.KindPaymentConfirmed, appointment, actor), func(tx *sqlx.Tx) error {
		_, err := s.repo.UpdateTx(ctx, tx, map[string]any{
			model.FieldPaymentStatus: model.PaymentStatusSuccess,
			model.FieldIsPaid:        true,
			constant.FieldModifiedAt: timezone.Now(),
		}, byID(organisation, id))

		return err
	})
	if err != nil {
		log.Error().Err(err).Str("appointment_id", id).Msg("failed to confirm payment")

		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	return nil
}

// commit runs write and queues the orchestration job in the same transaction.
func (s *serviceImpl) commit(ctx context.Context, job orchestrator.Job, write func(tx *sqlx.Tx) error) error {
	msg, err := outboxModel.NewOrchestration(job.Organisation, job.AppointmentID, job, timezone.Now())
	if err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := write(tx); err != nil {
			return err
		}

		return s.outbox.InsertTx(ctx, tx, msg)
	})
}

// find loads an active appointment the actor may see.
func (s *serviceImpl) find(ctx context.Context, actor gModel.Actor, id string) (model.Appointment, error) {
	extra := append([]any{gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName}}, ownedBy(actor)...)

	appointment, err := s.repo.Get(ctx, shared.FilterActiveByOrganisation(actor.Organisation, model.TableName, extra...))
	if err != nil {
		log.Error().Err(err).Str("appointment_id", id).Msg("failed to get appointment")

		return appointment, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return appointment, ErrAppointmentNotFound
	}

	return appointment, nil
}

func ownedBy(actor gModel.Actor) []any {
	if actor.IsAdmin() {
		return nil
	}

	return []any{gDto.Filter{Field: model.FieldCustomerID, Value: actor.UserID, Operator: gDto.FilterOperatorEq, Table: model.TableName}}
}

func byID(organisation, id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: constant.FieldOrganisation, Value: organisation, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func jobFor(kind string, appointment model.Appointment, actor gModel.Actor) orchestrator.Job {
	return orchestrator.Job{
		Kind:          kind,
		AppointmentID: appointment.ID,
		Organisation:  appointment.Organisation,
		AdminID:       actor.AdminID,
		Token:         actor.Token,
		ActorType:     actor.Type,
	}
}

func displayBookingID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(bookingIDRange))
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to generate booking id: %w", err)
	}

	return bookingIDPrefix + n.String(), nil
}
