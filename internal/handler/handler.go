// Package handler wires the HTTP surface: query interpretation, per-customer
// reports, cost summaries and the auth endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/detector"
	"github.com/finwell-io/wellness-service/internal/models"
	"github.com/finwell-io/wellness-service/internal/recommend"
	"github.com/finwell-io/wellness-service/internal/repository"
)

const subscriptionWindowDays = 90

// Interpreter answers free-text questions.
type Interpreter interface {
	Interpret(ctx context.Context, query, contextCustomerID string) (*models.QueryResult, error)
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Recommender produces per-customer suggestions.
type Recommender interface {
	Recommend(ctx context.Context, customerID, persona string) ([]recommend.Recommendation, error)
}

// Store is the direct read surface the REST endpoints use.
type Store interface {
	Ping(ctx context.Context) error
	CustomerByID(ctx context.Context, customerID string) (*models.Customer, error)
	TransactionsSince(ctx context.Context, customerID string, since time.Time) ([]models.Transaction, error)
	CostSummarySince(ctx context.Context, since time.Time) (*models.CostSummary, error)
}

type Handler struct {
	auth    AuthService
	interp  Interpreter
	rec     Recommender
	store   Store
	det     *detector.Detector
	log     *logrus.Logger
	now     func() time.Time
	version string
}

func NewHandler(auth AuthService, interp Interpreter, rec Recommender, store Store, det *detector.Detector, version string, log *logrus.Logger) *Handler {
	return &Handler{
		auth:    auth,
		interp:  interp,
		rec:     rec,
		store:   store,
		det:     det,
		log:     log,
		now:     time.Now,
		version: version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles analyst account creation.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrStore) {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type queryRequest struct {
	Query      string `json:"query"`
	CustomerID string `json:"customer_id,omitempty"`
}

// Query runs one free-text question through the interpreter. The envelope is
// always returned with 200 for handled questions, including in-band failures;
// only store connectivity faults surface as 503.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := h.interp.Interpret(r.Context(), req.Query, req.CustomerID)
	if err != nil {
		h.log.WithError(err).Error("query failed on store fault")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Subscriptions reports detected recurring charges for one customer.
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]
	now := h.now()

	txs, err := h.store.TransactionsSince(r.Context(), customerID, now.AddDate(0, 0, -subscriptionWindowDays))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	detection := h.det.Detect(txs, now, subscriptionWindowDays)
	writeJSON(w, http.StatusOK, models.SubscriptionsResult{
		Type:               models.ResultTypeSubscriptions,
		CustomerID:         customerID,
		WindowDays:         subscriptionWindowDays,
		Subscriptions:      detection.Charges,
		SubscriptionCount:  detection.SubscriptionCount,
		ActiveCount:        detection.ActiveCount,
		TotalMonthlySpend:  detection.TotalMonthlySpend,
		ActiveMonthlySpend: detection.ActiveMonthlySpend,
		SubscriptionShare:  detection.SubscriptionShare,
	})
}

// Recommendations returns persona-tailored suggestions for one customer.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]

	customer, err := h.store.CustomerByID(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	recs, err := h.rec.Recommend(r.Context(), customerID, customer.Persona)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id":     customerID,
		"persona":         customer.Persona,
		"recommendations": recs,
	})
}

// CostSummary reports AI usage spend since a window start (default 30 days).
func (h *Handler) CostSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	summary, err := h.store.CostSummarySince(r.Context(), h.now().AddDate(0, 0, -days))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Health reports liveness and store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"version": h.version,
	})
}
