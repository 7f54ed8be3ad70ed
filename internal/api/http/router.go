package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers the car rental HTTP endpoints
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware, recoverMiddleware)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/cars", h.ListCars).Methods(http.MethodGet)
	api.HandleFunc("/cars/{id}", h.GetCar).Methods(http.MethodGet)
	api.HandleFunc("/cars/{id}/rentals", h.ListRentalsForCar).Methods(http.MethodGet)
	api.HandleFunc("/cars/{id}/quote", h.Quote).Methods(http.MethodGet)
	api.HandleFunc("/cars/{id}/return", h.ReturnCar).Methods(http.MethodPost)
	api.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet)
	api.HandleFunc("/rentals", h.RentCar).Methods(http.MethodPost)

	// Subrouters resolve their own mismatches, so both routers need the handlers.
	for _, r := range []*mux.Router{router, api} {
		r.NotFoundHandler = requestIDMiddleware(http.HandlerFunc(notFound))
		r.MethodNotAllowedHandler = requestIDMiddleware(http.HandlerFunc(methodNotAllowed))
	}

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "NotFound", Message: "no route for " + r.URL.Path})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "MethodNotAllowed", Message: r.Method + " is not supported on " + r.URL.Path})
}
