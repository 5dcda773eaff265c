package router

import (
	"consultation/internal/handlers/appointment"
	"consultation/internal/handlers/category"
	"consultation/internal/handlers/consultation"
	"consultation/internal/handlers/outbox"
	"consultation/internal/handlers/zoom"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Category     category.Handler
	Consultation consultation.Handler
	Appointment  appointment.Handler
	Zoom         zoom.Handler
	Outbox       outbox.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1/consultations", func(routerGroup chi.Router) {
		r.DomainHandlers.Category.Router(routerGroup)
		r.DomainHandlers.Consultation.Router(routerGroup)
		r.DomainHandlers.Appointment.Router(routerGroup)
		r.DomainHandlers.Zoom.Router(routerGroup)
		r.DomainHandlers.Outbox.Router(routerGroup)

		routerGroup.Route("/end_user", func(endUser chi.Router) {
			r.DomainHandlers.Category.EndUserRouter(endUser)
			r.DomainHandlers.Consultation.EndUserRouter(endUser)
			r.DomainHandlers.Appointment.EndUserRouter(endUser)
		})
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
