package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
	"carrental-backend/internal/utils"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the rental and listing operations over JSON.
type Handler struct {
	rentals  service.RentalService
	listings service.ListingService
	db       Pinger
}

func NewHandler(rentals service.RentalService, listings service.ListingService, db Pinger) *Handler {
	return &Handler{rentals: rentals, listings: listings, db: db}
}

type rentRequest struct {
	ClientID  int32  `json:"client_id"`
	CarID     int32  `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type rentalResponse struct {
	ID         int32      `json:"id"`
	ClientID   int32      `json:"client_id"`
	CarID      int32      `json:"car_id"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Status     string     `json:"status"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

type quoteResponse struct {
	Car       domain.Car `json:"car"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Days      int        `json:"days"`
	Total     string     `json:"total"`
}

func toRentalResponse(r domain.Rental) rentalResponse {
	return rentalResponse{
		ID:         r.ID,
		ClientID:   r.ClientID,
		CarID:      r.CarID,
		StartDate:  r.StartDate.Format(domain.DateLayout),
		EndDate:    r.EndDate.Format(domain.DateLayout),
		Status:     string(r.Status),
		ReturnedAt: r.ReturnedAt,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cars, err := h.listings.SearchCars(r.Context(), q.Get("q"), q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *Handler) GetCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	car, err := h.listings.GetCar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *Handler) ListRentalsForCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.listings.ListRentalsForCar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]rentalResponse, 0, len(rentals))
	for _, rental := range rentals {
		out = append(out, toRentalResponse(rental))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := utils.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := utils.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	quote, err := h.rentals.Quote(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Car:       quote.Car,
		StartDate: quote.Start.Format(domain.DateLayout),
		EndDate:   quote.End.Format(domain.DateLayout),
		Days:      quote.Days,
		Total:     quote.Total.StringFixed(2),
	})
}

func (h *Handler) ReturnCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.ReturnCar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(*rental))
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.listings.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) RentCar(w http.ResponseWriter, r *http.Request) {
	var req rentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, invalidArgument("malformed request body: %v", err))
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentals.RentCar(r.Context(), domain.RentRequest{
		ClientID:  req.ClientID,
		CarID:     req.CarID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRentalResponse(*rental))
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, invalidArgument("invalid %s %q", name, raw)
	}
	return int32(id), nil
}
