// Package orchestrator carries out the side effects of an appointment transition: meeting
// provisioning, identity lookup and the downstream notification events. It runs from the
// outbox relay, never on the request path.
package orchestrator

//go:generate go run go.uber.org/mock/mockgen -source=./orchestrator.go -destination=../mocks/orchestrator_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultation/config"
	"consultation/infras/directory"
	"consultation/infras/metrics"
	"consultation/infras/otel"
	"consultation/infras/zoom"
	"consultation/internal/domains/appointment/model"
	appointmentRepo "consultation/internal/domains/appointment/repository"
	consultationModel "consultation/internal/domains/consultation/model"
	consultationRepo "consultation/internal/domains/consultation/repository"
	outboxModel "consultation/internal/domains/outbox/model"
	outboxRepo "consultation/internal/domains/outbox/repository"
	"consultation/shared"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/timezone"

	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transition kinds.
const (
	KindCreated          = "CREATED"
	KindPaymentConfirmed = "PAYMENT_CONFIRMED"
	KindRescheduled      = "RESCHEDULED"
	KindStatusChanged    = "STATUS_CHANGED"
)

const collaboratorZoom = "zoom"

var ErrAppointmentNotFound = errors.New("appointment not found")

// Job is one orchestration run, stored in the outbox alongside the transition.
type Job struct {
	Kind          string `json:"kind"`
	AppointmentID string `json:"appointment_id"`
	Organisation  string `json:"organisation"`
	AdminID       string `json:"admin_id"`
	Token         string `json:"token"`
	ActorType     string `json:"actor_type"`
	PreviousDate  string `json:"previous_date,omitempty"`
	PreviousSlot  string `json:"previous_slot,omitempty"`
	Status        string `json:"status,omitempty"`
}

// Credentials resolves the Zoom key pair for a staff member of an organisation.
type Credentials interface {
	Credentials(ctx context.Context, organisation string, staffID *string) (zoom.Credentials, error)
}

type Orchestrator interface {
	// Run fails only when the appointment cannot be read or the events cannot be
	// queued. Failing side effects are logged and skipped.
	Run(ctx context.Context, job Job) error
}

type orchestratorImpl struct {
	appointments  appointmentRepo.Appointment
	consultations consultationRepo.Consultation
	offerings     consultationRepo.Offering
	credentials   Credentials
	meetings      zoom.Client
	directory     directory.Resolver
	outbox        outboxRepo.Outbox
	cfg           *config.Config
	otel          otel.Otel
	metrics       *metrics.Metrics
}

func New(
	cfg *config.Config,
	appointments appointmentRepo.Appointment,
	consultations consultationRepo.Consultation,
	offerings consultationRepo.Offering,
	credentials Credentials,
	meetings zoom.Client,
	resolver directory.Resolver,
	outbox outboxRepo.Outbox,
	otel otel.Otel,
	m *metrics.Metrics,
) Orchestrator {
	return &orchestratorImpl{
		appointments:  appointments,
		consultations: consultations,
		offerings:     offerings,
		credentials:   credentials,
		meetings:      meetings,
		directory:     resolver,
		outbox:        outbox,
		cfg:           cfg,
		otel:          otel,
		metrics:       m,
	}
}

func (o *orchestratorImpl) Run(ctx context.Context, job Job) (err error) {
	ctx, scope := o.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".orchestrator.Run")
	defer scope.End()
	defer scope.TraceIfError(err)
	defer o.metrics.ObserveOrchestration(job.Kind, time.Now())

	scope.SetAttributes(map[string]any{"appointment.id": job.AppointmentID, "orchestration.kind": job.Kind})

	logger := log.With().
		Str("appointment_id", job.AppointmentID).
		Str("organisation", job.Organisation).
		Str("kind", job.Kind).
		Logger()

	appointment, err := o.appointments.Get(ctx, tenantRow(job.Organisation, job.AppointmentID, model.FieldID, model.TableName))
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return fmt.Errorf("%w: %s", ErrAppointmentNotFound, job.AppointmentID)
	}

	consultation, err := o.consultations.Get(ctx, tenantRow(job.Organisation, appointment.ConsultationID, consultationModel.FieldID, consultationModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to load consultation: %w", err)
	}

	if consultation.ID == constant.Empty {
		logger.Warn().Str("consultation_id", appointment.ConsultationID).Msg("consultation of appointment is gone, continuing without it")
	}

	subj := subject{
		appointment:  appointment,
		consultation: consultation,
		customer:     o.directory.Resolve(ctx, appointment.CustomerID, job.ActorType, job.Token, job.Organisation),
		job:          job,
	}

	if appointment.StaffID != nil {
		subj.staff = o.directory.Resolve(ctx, *appointment.StaffID, job.ActorType, job.Token, job.Organisation)
	}

	if job.Kind != KindStatusChanged && appointment.MeetingType == consultationModel.ModeOnline && !appointment.HasMeeting() {
		subj.appointment = o.provisionMeeting(ctx, logger, appointment, consultation, subj.staff)
	}

	if subj.customer == nil {
		logger.Warn().Msg("customer identity unresolved, sending without it")
	}

	messages := o.emit(ctx, logger, subj)
	if len(messages) == 0 {
		logger.Info().Str("status", job.Status).Msg("transition has no side effects")

		return nil
	}

	if err = o.outbox.InsertBatch(ctx, messages); err != nil {
		logger.Error().Err(err).Msg("failed to queue appointment events")

		return fmt.Errorf("failed to queue appointment events: %w", err)
	}

	logger.Info().Int("events", len(messages)).Msg("appointment events queued")

	return nil
}

// provisionMeeting creates the Zoom meeting and stores it on the appointment. On failure
// the appointment keeps an empty meeting and the run goes on.
func (o *orchestratorImpl) provisionMeeting(
	ctx context.Context,
	logger zerolog.Logger,
	appointment model.Appointment,
	consultation consultationModel.Consultation,
	staff *directory.UserInfo,
) model.Appointment {
	creds, err := o.credentials.Credentials(ctx, appointment.Organisation, appointment.StaffID)
	if err != nil {
		o.metrics.ObserveCollaborator(collaboratorZoom, metrics.ResultMiss)
		logger.Warn().Err(err).Str("step", "meeting").Msg("no zoom credentials, skipping meeting")

		return appointment
	}

	start, err := timezone.Parse(constant.BookingDateLayout+" "+constant.BookingSlotLayout, appointment.Date+" "+appointment.Slot)
	if err != nil {
		logger.Warn().Err(err).Str("step", "meeting").Msg("invalid appointment date or slot, skipping meeting")

		return appointment
	}

	raw, err := o.meetings.CreateMeeting(ctx, creds, zoom.MeetingRequest{
		Topic:    meetingTopic(consultation.Name, staff),
		Start:    start,
		Duration: consultation.Duration,
	})
	if err != nil || zoom.ParseMeeting(raw).JoinURL == constant.Empty {
		o.metrics.ObserveCollaborator(collaboratorZoom, metrics.ResultFailure)
		logger.Error().Err(err).Str("step", "meeting").Msg("failed to create zoom meeting")

		return appointment
	}

	o.metrics.ObserveCollaborator(collaboratorZoom, metrics.ResultSuccess)

	appointment.MeetingInfo = types.JSONText(raw)

	_, err = o.appointments.Update(ctx, map[string]any{
		model.FieldMeetingInfo:   appointment.MeetingInfo,
		constant.FieldModifiedAt: timezone.Now(),
	}, shared.FilterByID(appointment.ID, model.FieldID, model.TableName))
	if err != nil {
		logger.Error().Err(err).Str("step", "meeting").Msg("failed to save meeting info")
	}

	return appointment
}

func meetingTopic(service string, staff *directory.UserInfo) string {
	topic := "Appointment for the service " + service
	if name := fullName(staff); name != "" {
		topic += " with " + name
	}

	return topic
}

type emission struct {
	step       string
	exchange   string
	routingKey string
	build      func() (any, error)
}

func (o *orchestratorImpl) emissions(ctx context.Context, subj subject) []emission {
	events := o.cfg.Events

	email := func(step, routingKey string, build func() EmailPayload) emission {
		return emission{step: step, exchange: events.EmailExchange, routingKey: routingKey, build: func() (any, error) { return build(), nil }}
	}

	customer := email("customer_email", events.CreateRoutingKey, subj.customerConfirmation)
	staff := email("staff_email", events.CreateRoutingKey, subj.staffConfirmation)
	invoice := emission{
		step:       "invoice",
		exchange:   events.DocumentExchange,
		routingKey: events.CreateRoutingKey,
		build: func() (any, error) {
			offerings, err := o.offerings.GetAll(ctx, gDto.QueryParams{}, shared.FilterActiveByOrganisation(
				subj.appointment.Organisation,
				consultationModel.OfferingTableName,
				gDto.Filter{
					Field:    consultationModel.FieldConsultationID,
					Value:    subj.appointment.ConsultationID,
					Operator: gDto.FilterOperatorEq,
					Table:    consultationModel.OfferingTableName,
				},
			))
			if err != nil {
				return nil, fmt.Errorf("failed to get consultation offerings: %w", err)
			}

			return subj.invoice(offerings)
		},
	}

	var out []emission

	switch subj.job.Kind {
	case KindCreated:
		out = append(out, customer)
		if subj.hasStaff() {
			out = append(out, staff)
		}

		out = append(out,
			emission{
				step:       "alert",
				exchange:   events.NotificationExchange,
				routingKey: events.CreateRoutingKey,
				build:      func() (any, error) { return subj.alert() },
			},
			invoice,
			emission{
				step:       "lead",
				exchange:   events.LeadExchange,
				routingKey: events.CreateRoutingKey,
				build:      func() (any, error) { return subj.lead(), nil },
			},
		)
	case KindPaymentConfirmed:
		out = append(out, customer)
		if subj.hasStaff() {
			out = append(out, staff)
		}

		out = append(out, invoice)
	case KindRescheduled:
		if subj.job.ActorType != constant.ActorEndUser {
			out = append(out, email("reschedule_notice", events.RescheduleRoutingKey, subj.rescheduleNotice))

			break
		}

		out = append(out, email("reschedule_confirmation", events.RescheduleRoutingKey, subj.rescheduleConfirmation))
		if subj.hasStaff() {
			out = append(out, email("staff_reschedule_notice", events.RescheduleRoutingKey, subj.staffRescheduleNotice))
		}
	case KindStatusChanged:
		// ACCEPTED, COMPLETED and NO_SHOW have no downstream event.
		if subj.job.Status == model.StatusRejected {
			out = append(out, email("rejection", events.RejectRoutingKey, subj.rejection))
		}
	}

	return out
}

// emit builds each event on its own; one that cannot be built is logged and left out.
func (o *orchestratorImpl) emit(ctx context.Context, logger zerolog.Logger, subj subject) []outboxModel.Message {
	now := timezone.Now()

	var messages []outboxModel.Message

	for _, e := range o.emissions(ctx, subj) {
		payload, err := e.build()
		if err != nil {
			logger.Error().Err(err).Str("step", e.step).Msg("failed to build appointment event")

			continue
		}

		msg, err := outboxModel.NewEvent(subj.appointment.Organisation, subj.appointment.ID, e.exchange, e.routingKey, payload, now)
		if err != nil {
			logger.Error().Err(err).Str("step", e.step).Msg("failed to encode appointment event")

			continue
		}

		messages = append(messages, msg)
	}

	return messages
}

// tenantRow matches one row of an organisation, deactivated or not.
func tenantRow(organisation, id, fieldID, table string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: fieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: table},
			gDto.Filter{Field: constant.FieldOrganisation, Value: organisation, Operator: gDto.FilterOperatorEq, Table: table},
		},
	}
}
