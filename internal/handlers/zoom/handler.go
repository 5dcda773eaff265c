package zoom

import (
	"net/http"

	"consultation/infras/otel"
	"consultation/internal/domains/zoom/model/dto"
	"consultation/internal/domains/zoom/service"
	"consultation/shared/constant"
	"consultation/shared/validator"
	"consultation/transport/http/middleware"
	"consultation/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Credential
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Credential, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/zoom", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.APIKey, handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Get("/", handler.GetCredentials)
		routerGroup.Post("/", handler.CreateCredential)
		routerGroup.Patch("/{id}", handler.UpdateCredential)
		routerGroup.Delete("/{id}", handler.DeleteCredential)
	})
}

// GetCredentials lists the organisation's meeting credentials with secrets masked.
func (handler *Handler) GetCredentials(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetZoomCredentials")
	defer scope.End()

	credentials, err := handler.service.GetAll(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get zoom credentials")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, credentials)
}

func (handler *Handler) CreateCredential(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateZoomCredential")
	defer scope.End()

	var req dto.CreateCredentialRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	credential, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create zoom credential")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, credential)
}

func (handler *Handler) UpdateCredential(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateZoomCredential")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.UpdateCredentialRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update zoom credential")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Zoom credential updated successfully")
}

func (handler *Handler) DeleteCredential(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteZoomCredential")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete zoom credential")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Zoom credential deleted successfully")
}
