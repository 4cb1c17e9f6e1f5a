package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tour-itinerary-service/internal/api/handlers"
	"tour-itinerary-service/internal/platform/metrics"
	"tour-itinerary-service/internal/ports"
	"tour-itinerary-service/internal/services"
)

// Deps is the set of collaborators the HTTP layer needs.
type Deps struct {
	Tours       ports.TourRepository
	Venues      ports.VenueRepository
	Events      ports.EventRepository
	Itineraries ports.ItineraryRepository
	Generator   *services.Generator
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	tourHandler := &handlers.TourHandler{Repo: deps.Tours}
	venueHandler := &handlers.VenueHandler{Repo: deps.Venues}
	eventHandler := &handlers.EventHandler{Repo: deps.Events, Tours: deps.Tours}
	itineraryHandler := &handlers.ItineraryHandler{
		Generator: deps.Generator,
		Repo:      deps.Itineraries,
	}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /tours", tourHandler.List)
	mux.HandleFunc("POST /tours", tourHandler.Create)
	mux.HandleFunc("GET /tours/{id}", tourHandler.Get)
	mux.HandleFunc("PUT /tours/{id}", tourHandler.Update)
	mux.HandleFunc("DELETE /tours/{id}", tourHandler.Delete)

	mux.HandleFunc("GET /venues", venueHandler.List)
	mux.HandleFunc("POST /venues", venueHandler.Create)
	mux.HandleFunc("GET /venues/{id}", venueHandler.Get)
	mux.HandleFunc("PUT /venues/{id}", venueHandler.Update)
	mux.HandleFunc("DELETE /venues/{id}", venueHandler.Delete)

	mux.HandleFunc("GET /events", eventHandler.List)
	mux.HandleFunc("POST /events", eventHandler.Create)
	mux.HandleFunc("GET /events/{id}", eventHandler.Get)
	mux.HandleFunc("PUT /events/{id}", eventHandler.Update)
	mux.HandleFunc("DELETE /events/{id}", eventHandler.Delete)

	mux.HandleFunc("GET /itineraries", itineraryHandler.List)
	mux.HandleFunc("POST /itineraries/generate", itineraryHandler.Generate)

	return metricsMiddleware(loggingMiddleware(mux))
}
