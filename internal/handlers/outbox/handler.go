package outbox

import (
	"net/http"

	"consultation/infras/otel"
	"consultation/internal/domains/outbox/service"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/transport/http/middleware"
	"consultation/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Outbox
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Outbox, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/outbox", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.APIKey, handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Get("/dead", handler.GetDeadLetters)
		routerGroup.Post("/dead/{id}/requeue", handler.Requeue)
	})
}

// GetDeadLetters lists messages the relay gave up on, newest first.
func (handler *Handler) GetDeadLetters(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDeadLetters")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	messages, err := handler.service.GetDead(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get dead letters")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, messages)
}

func (handler *Handler) Requeue(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RequeueDeadLetter")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Requeue(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to requeue dead letter")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Dead letter " + id + " requeued")

	response.WithMessage(writer, http.StatusOK, "Message requeued")
}
