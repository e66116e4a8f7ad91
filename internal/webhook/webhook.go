// Package webhook receives Beem payment callbacks and records them as
// transactions.
package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/collection"
	"github.com/beemafrica/beem-go/internal/httputil"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
	"github.com/beemafrica/beem-go/internal/transactions"
)

// TokenHeader carries the shared secret on every callback.
const TokenHeader = "beem-secure-token"

// RequireToken rejects requests whose TokenHeader does not equal secret.
// An empty secret disables the check.
func RequireToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		want := []byte(secret)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(TokenHeader))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				httputil.WriteError(w, http.StatusUnauthorized, "invalid webhook token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Handler serves the callback endpoints. A nil store acknowledges callbacks
// without recording them.
type Handler struct {
	store  transactions.Store
	logger *slog.Logger
	region string
	now    func() time.Time
}

type Option func(*Handler)

// WithRegion sets the region used to normalise national-format numbers.
func WithRegion(region string) Option {
	return func(h *Handler) { h.region = region }
}

func NewHandler(store transactions.Store, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: store, logger: logger, region: phone.DefaultRegion, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the checkout callback router.
func (h *Handler) Routes(secret string) chi.Router {
	r := chi.NewRouter()
	r.Use(RequireToken(secret))
	r.Post("/", h.handleCallback)
	return r
}

// CollectionRoutes returns the payment collection callback router.
func (h *Handler) CollectionRoutes(secret string) chi.Router {
	r := chi.NewRouter()
	r.Use(RequireToken(secret))
	r.Post("/", h.handleCollection)
	return r
}

var callbackTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}

// FieldError reports a callback field that is missing or unusable.
type FieldError struct {
	Field string
	Code  string // "required" or "invalid"
}

func (e *FieldError) Error() string {
	if e.Code == "invalid" {
		return e.Field + " is invalid"
	}
	return e.Field + " is required"
}

// requiredCallbackFields are the keys every checkout callback must carry.
var requiredCallbackFields = []string{"transaction_id", "reference_number", "amount", "status"}

// ParseCallback maps a checkout callback body to a transaction. The caller
// supplies now for callbacks that carry no usable timestamp. A missing
// required field or an unparseable amount is a *FieldError.
func ParseCallback(m map[string]any, raw json.RawMessage, region string, now time.Time) (*transactions.Transaction, error) {
	for _, f := range requiredCallbackFields {
		if strings.TrimSpace(payload.String(m, f)) == "" {
			return nil, &FieldError{Field: f, Code: "required"}
		}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(payload.String(m, "amount")))
	if err != nil || amount.IsNegative() {
		return nil, &FieldError{Field: "amount", Code: "invalid"}
	}
	msisdn := payload.String(m, "msisdn")
	if msisdn == "" {
		msisdn = payload.String(m, "mobile")
	}
	if n, err := phone.NormalizeMSISDN(msisdn, region); err == nil {
		msisdn = n
	}
	tx := &transactions.Transaction{
		TransactionID:   payload.String(m, "transaction_id"),
		ReferenceNumber: payload.String(m, "reference_number"),
		Amount:          amount,
		Status:          transactions.ParseStatus(payload.String(m, "status")),
		MSISDN:          msisdn,
		RawPayload:      raw,
	}
	if tx.Status != transactions.StatusPending {
		at := now.UTC()
		ts := payload.String(m, "timestamp")
		for _, layout := range callbackTimeLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				at = t.UTC()
				break
			}
		}
		tx.ProcessedAt = &at
	}
	return tx, nil
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	raw, ok := httputil.ReadJSON(w, r, &body)
	if !ok {
		return
	}
	tx, err := ParseCallback(body, raw, h.region, h.now())
	if err != nil {
		fe := &FieldError{Field: "transaction_id", Code: "required"}
		errors.As(err, &fe)
		httputil.WriteFieldError(w, http.StatusUnprocessableEntity, "invalid callback", fe.Field, fe.Code, fe.Error())
		return
	}
	h.record(w, r, "checkout", tx)
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	raw, ok := httputil.ReadJSON(w, r, &body)
	if !ok {
		return
	}
	cb, err := collection.ParseCallback(body)
	if err != nil {
		httputil.WriteFieldError(w, http.StatusUnprocessableEntity, "invalid callback",
			"transaction_id", "required", "transaction_id is required")
		return
	}
	tx := cb.Transaction(raw, h.region)
	if tx.ProcessedAt == nil {
		at := h.now().UTC()
		tx.ProcessedAt = &at
	}
	h.record(w, r, "collection", tx)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request, kind string, tx *transactions.Transaction) {
	log := h.logger.With("kind", kind, "transaction_id", tx.TransactionID, "status", tx.Status)
	if h.store == nil {
		log.Info("beem callback received, storage disabled", "reference", tx.ReferenceNumber, "amount", tx.Amount.String())
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if err := h.store.UpsertByTransactionID(r.Context(), tx); err != nil {
		log.Error("recording beem callback", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	log.Info("beem callback recorded", "reference", tx.ReferenceNumber)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
