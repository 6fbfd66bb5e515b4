package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/app"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
)

type Handlers struct {
	Q         *app.QueryService
	B         *app.BookingService
	JWTSecret []byte
	Limiter   *UserLimiter
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type createBookingRequest struct {
	NumRooms int    `json:"num_rooms"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type bookingResponse struct {
	BookingID     string `json:"booking_id"`
	Rooms         []int  `json:"rooms"`
	TravelTime    int    `json:"travel_time"`
	TotalPrice    string `json:"total_price"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
}

type quoteResponse struct {
	Rooms      []int  `json:"rooms"`
	TravelTime int    `json:"travel_time"`
	Nights     int    `json:"nights"`
	TotalPrice string `json:"total_price"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/rooms/available", h.availableRooms)
	s.mux.Get("/rooms/quote", h.quote)

	s.mux.Group(func(r chi.Router) {
		r.Use(Auth(h.JWTSecret))
		r.With(h.limit).Post("/bookings", h.createBooking)
		r.With(h.limit).Put("/bookings/{id}/cancel", h.cancelBooking)
		r.Get("/bookings", h.listBookings)
		r.Get("/bookings/{id}", h.getBooking)
	})
}

func (h *Handlers) limit(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	return h.Limiter.Middleware(next)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the booking error taxonomy onto HTTP statuses and records
// the class on the request's access entry.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	class := domain.Classify(err)
	if e := accessEntryFrom(r.Context()); e != nil {
		e.class = class
	}
	switch class {
	case domain.ClassInvalidRequest:
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case domain.ClassInsufficientRooms:
		writeProblem(w, http.StatusConflict, "Insufficient Rooms", "not enough free rooms for the requested dates")
	case domain.ClassConflict:
		writeProblem(w, http.StatusConflict, "Conflict", "rooms were taken by a concurrent booking; please retry")
	case domain.ClassNotCancellable:
		writeProblem(w, http.StatusConflict, "Not Cancellable", err.Error())
	case domain.ClassNotFound:
		writeProblem(w, http.StatusNotFound, "Not Found", "booking not found")
	case domain.ClassForbidden:
		writeProblem(w, http.StatusForbidden, "Forbidden", "booking belongs to another user")
	default:
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
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

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:     b.ID,
		Rooms:         b.Rooms,
		TravelTime:    b.TravelTime,
		TotalPrice:    b.TotalPrice.StringFixed(2),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CheckIn:       b.CheckIn.Format(domain.DateLayout),
		CheckOut:      b.CheckOut.Format(domain.DateLayout),
	}
}

func parseDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	ci, err := domain.ParseDay(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, &domain.ValidationError{Field: "check_in", Msg: "expected YYYY-MM-DD"}
	}
	co, err := domain.ParseDay(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, &domain.ValidationError{Field: "check_out", Msg: "expected YYYY-MM-DD"}
	}
	return ci, co, nil
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserID(r.Context())

	var req createBookingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, &domain.ValidationError{Field: "body", Msg: "malformed JSON"})
		return
	}
	ci, co, err := parseDates(req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.B.CreateBooking(r.Context(), app.CreateBookingInput{
		UserID:   uid,
		NumRooms: req.NumRooms,
		CheckIn:  ci,
		CheckOut: co,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/bookings/"+b.ID)
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserID(r.Context())
	b, err := h.B.CancelBooking(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"booking_id": b.ID, "status": string(b.Status)})
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserID(r.Context())
	b, err := h.Q.GetBooking(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeWithETag(w, r, toBookingResponse(b))
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserID(r.Context())

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeError(w, r, &domain.ValidationError{Field: "limit", Msg: "must be an integer between 1 and 200"})
			return
		}
		limit = l
	}

	bs, err := h.Q.ListBookings(r.Context(), uid, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]bookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) availableRooms(w http.ResponseWriter, r *http.Request) {
	ci, co, err := parseDates(r.URL.Query().Get("check_in"), r.URL.Query().Get("check_out"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Q.AvailableRooms(r.Context(), ci, co)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeWithETag(w, r, view)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("rooms"))
	if err != nil {
		writeError(w, r, &domain.ValidationError{Field: "rooms", Msg: "must be an integer"})
		return
	}
	ci, co, err := parseDates(r.URL.Query().Get("check_in"), r.URL.Query().Get("check_out"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.B.Quote(r.Context(), n, ci, co)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Rooms:      q.Numbers(),
		TravelTime: q.TravelTime,
		Nights:     q.Nights,
		TotalPrice: q.TotalPrice.StringFixed(2),
	})
}
