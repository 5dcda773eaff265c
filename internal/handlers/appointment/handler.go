package appointment

import (
	"net/http"

	"consultation/infras/otel"
	"consultation/internal/domains/appointment/model/dto"
	"consultation/internal/domains/appointment/service"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	gModel "consultation/shared/model"
	"consultation/shared/validator"
	"consultation/transport/http/middleware"
	"consultation/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Appointment
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Appointment, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/appointments", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.APIKey, handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Post("/", handler.CreateAppointment)
		routerGroup.Get("/", handler.GetAppointments)
		routerGroup.Get("/{id}", handler.GetAppointmentByID)
		routerGroup.Patch("/{id}", handler.UpdateAppointment)
		routerGroup.Delete("/{id}", handler.DeleteAppointment)
		routerGroup.Patch("/reschedule/{id}", handler.RescheduleAppointment)
	})
}

// EndUserRouter exposes booking for customers. Reads and reschedules are limited to
// the caller's own appointments by the service.
func (handler *Handler) EndUserRouter(router chi.Router) {
	router.Route("/appointments", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Post("/", handler.CreateAppointment)
		routerGroup.Get("/", handler.GetAppointments)
		routerGroup.Get("/{id}", handler.GetAppointmentByID)
		routerGroup.Patch("/reschedule/{id}", handler.RescheduleAppointment)
	})
}

// CreateAppointment books a slot and queues the follow-up notifications.
// @Summary Book an appointment
// @Description Admins book on behalf of customer_id, end users book for themselves.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Booking"
// @Success 201 {object} response.Data[dto.AppointmentResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/consultations/appointments [post]
// @Security BearerAuth
func (handler *Handler) CreateAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAppointment")
	defer scope.End()

	var req dto.CreateAppointmentRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	appointment, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create appointment")

		response.WithError(writer, err)

		return
	}

	actor := gModel.ActorFromContext(ctx)
	scope.AddEvent("Appointment " + appointment.DisplayBookingID + " booked by " + actor.Type + " " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, appointment)
}

// GetAppointments lists the organisation's appointments, or the caller's own for end users.
// @Summary List appointments
// @Tags Appointment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/consultations/appointments [get]
// @Security BearerAuth
func (handler *Handler) GetAppointments(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	appointments, err := handler.service.GetAll(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointments")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, appointments)
}

func (handler *Handler) GetAppointmentByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointmentByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	appointment, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get appointment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, appointment)
}

// UpdateAppointment patches status, notes, payment mode or staff. A status change goes
// through the transition rules.
func (handler *Handler) UpdateAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAppointment")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.UpdateAppointmentRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	appointment, err := handler.service.UpdateStatus(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update appointment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointment updated by user " + gModel.ActorFromContext(ctx).UserID)

	response.WithJSON(writer, http.StatusOK, appointment)
}

// @Summary Reschedule an appointment
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.RescheduleRequest true "New date and slot"
// @Success 200 {object} response.Data[dto.AppointmentResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/consultations/appointments/reschedule/{id} [patch]
// @Security BearerAuth
func (handler *Handler) RescheduleAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RescheduleAppointment")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.RescheduleRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	appointment, err := handler.service.Reschedule(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to reschedule appointment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, appointment)
}

func (handler *Handler) DeleteAppointment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAppointment")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete appointment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Appointment deleted by user " + gModel.ActorFromContext(ctx).UserID)

	response.WithMessage(writer, http.StatusOK, "Appointment deleted successfully")
}
