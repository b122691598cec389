package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"easystay/internal/app"
	"easystay/internal/domain"
)

type Handlers struct {
	Session *app.Session
	Hotels  *app.Hotels
	Orders  *app.Orders
	Geo     domain.Geocoder
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/session", h.getSession)
	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/orders", h.listOrders)
	s.mux.Get("/v1/regeo", h.regeo)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	type view struct {
		LoggedIn bool            `json:"logged_in"`
		Checking bool            `json:"checking"`
		Profile  *domain.Profile `json:"profile,omitempty"`
	}
	out := view{Checking: h.Session.Checking()}
	if p, ok := h.Session.Profile(); ok {
		out.LoggedIn = true
		out.Profile = &p
	}
	writeJSON(w, http.StatusOK, out)
}

// listHotels serves the accumulated result set for the current filters;
// it never triggers a backend search itself.
func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Hotels.Results())
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hotel, err := h.Hotels.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
		return
	}

	etag, body := calcETagAndBody(hotel)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write hotel body")
	}
}

func (h *Handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrLoginRequired) {
			writeProblem(w, http.StatusUnauthorized, "Login Required", "no valid session token")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
		return
	}
	if tab := r.URL.Query().Get("status"); tab != "" {
		orders = app.FilterByStatus(orders, tab)
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handlers) regeo(w http.ResponseWriter, r *http.Request) {
	if h.Geo == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Geocoder Disabled", "no AMap key configured")
		return
	}
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Coordinates", "lat and lng must be numbers")
		return
	}
	loc, err := h.Geo.Regeo(r.Context(), lng, lat)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, loc)
}
