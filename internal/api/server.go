package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/romanzzaa/plex-monitor/internal/usecase"
)

// AdminService - то, что HTTP-фасад вызывает у usecase.AdminService
type AdminService interface {
	Status() usecase.Status
	CurrentPrice(ctx context.Context) (domain.PriceQuote, error)
	SetInterval(ctx context.Context, req domain.IntervalChangeRequest) (time.Duration, error)
}

type Server struct {
	svc    AdminService
	logger *slog.Logger
	http   *http.Server
}

func NewServer(addr string, svc AdminService, logger *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger.With("component", "http"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStatus)
	mux.HandleFunc("GET /current_price", s.handleCurrentPrice)
	mux.HandleFunc("POST /set_interval", s.handleSetInterval)
	mux.HandleFunc("POST /set_interval/{$}", s.handleSetInterval)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s.logRequests(mux)
}

// ListenAndServe блокируется до Shutdown. Штатная остановка не считается ошибкой.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// --- DTOs ---

type statusResponse struct {
	Status                 string       `json:"status"`
	CurrentIntervalSeconds int64        `json:"current_interval_seconds"`
	LastPrice              *json.Number `json:"last_price"`
	LastUpdated            *string      `json:"last_updated"`
	TelegramConnected      bool         `json:"telegram_connected"`
}

type priceResponse struct {
	Price     json.Number `json:"price"`
	Currency  string      `json:"currency"`
	Timestamp string      `json:"timestamp"`
	Location  string      `json:"location"`
	Source    string      `json:"source"`
}

type setIntervalRequest struct {
	Interval int64  `json:"interval"`
	Unit     string `json:"unit"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Handlers ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Status()

	resp := statusResponse{
		Status:                 string(st.Phase),
		CurrentIntervalSeconds: int64(st.Interval / time.Second),
		TelegramConnected:      st.TelegramConnected,
	}
	if st.LastPrice.Valid {
		price := json.Number(st.LastPrice.Decimal.String())
		updated := st.LastUpdated.Format(time.RFC3339)
		resp.LastPrice = &price
		resp.LastUpdated = &updated
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	quote, err := s.svc.CurrentPrice(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrNoLiquidity):
		writeError(w, http.StatusServiceUnavailable, "Не удалось получить текущую цену PLEX: "+domain.Describe(err))
		return
	default:
		s.logger.Error("Current price request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Ошибка при запросе цены: "+domain.Describe(err))
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		Price:     json.Number(quote.Price.String()),
		Currency:  quote.Currency,
		Timestamp: quote.CapturedAt.Format(time.RFC3339),
		Location:  quote.Location,
		Source:    quote.Source,
	})
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var req setIntervalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректное тело запроса: ожидается {\"interval\": int, \"unit\": \"seconds|minutes|hours\"}")
		return
	}

	d, err := s.svc.SetInterval(r.Context(), domain.IntervalChangeRequest{
		Value: req.Interval,
		Unit:  domain.IntervalUnit(req.Unit),
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInterval), errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, domain.Describe(err)+" ("+err.Error()+")")
		return
	default:
		s.logger.Error("Set interval failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, domain.Describe(domain.ErrInternal))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: domain.IntervalChangedText(d)})
}

// --- Helpers ---

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("HTTP request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
