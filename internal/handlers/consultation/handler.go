package consultation

import (
	"net/http"

	"consultation/infras/otel"
	"consultation/internal/domains/consultation/model/dto"
	"consultation/internal/domains/consultation/service"
	"consultation/shared"
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
	service    service.Consultation
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Consultation, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/consultations", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.APIKey, handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Post("/", handler.CreateConsultation)
		routerGroup.Get("/", handler.GetConsultations)
		routerGroup.Get("/{id}", handler.GetConsultationByID)
		routerGroup.Put("/{id}", handler.UpdateConsultation)
		routerGroup.Delete("/{id}", handler.DeleteConsultation)
		routerGroup.Post("/{id}/image", handler.UploadImage)
	})
}

func (handler *Handler) EndUserRouter(router chi.Router) {
	router.Route("/consultations", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Get("/", handler.GetConsultations)
	})

	router.Route("/consultation", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Get("/{id}", handler.GetConsultationByID)
	})
}

func (handler *Handler) CreateConsultation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateConsultation")
	defer scope.End()

	var req dto.ConsultationRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	consultation, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create consultation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Consultation created by user " + gModel.ActorFromContext(ctx).UserID)

	response.WithJSON(writer, http.StatusCreated, consultation)
}

// GetConsultations lists active consultations, optionally narrowed to one category.
func (handler *Handler) GetConsultations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConsultations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	categoryID := request.URL.Query().Get(constant.RequestParamCategory)

	consultations, err := handler.service.GetAll(ctx, shared.OrganisationFromRequest(request), categoryID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get consultations")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, consultations)
}

func (handler *Handler) GetConsultationByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConsultationByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	consultation, err := handler.service.Get(ctx, shared.OrganisationFromRequest(request), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get consultation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, consultation)
}

func (handler *Handler) UpdateConsultation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateConsultation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.ConsultationRequest

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	consultation, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update consultation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Consultation updated by user " + gModel.ActorFromContext(ctx).UserID)

	response.WithJSON(writer, http.StatusOK, consultation)
}

func (handler *Handler) DeleteConsultation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteConsultation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete consultation")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Consultation deleted successfully")
}

func (handler *Handler) UploadImage(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadConsultationImage")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(writer, err)

		return
	}

	req := dto.UploadImageRequest{}

	file, fileHeader, err := request.FormFile(constant.FormFile)
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	consultation, err := handler.service.UploadImage(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to upload consultation image")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, consultation)
}
