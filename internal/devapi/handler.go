package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/platform/httpx"
	"finitefield.org/heara-web/internal/platform/idempotency"
	"finitefield.org/heara-web/internal/platform/observability"
)

const maxLeadBodySize = 16 * 1024

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is required")
)

// Handler serves the products and leads endpoints from a Store.
type Handler struct {
	store       *Store
	idempotency idempotency.Store
	idemOpts    []idempotency.MiddlewareOption
}

// HandlerOption customises a Handler.
type HandlerOption func(*Handler)

// WithIdempotency guards lead creation with the given store.
func WithIdempotency(store idempotency.Store, opts ...idempotency.MiddlewareOption) HandlerOption {
	return func(h *Handler) {
		h.idempotency = store
		h.idemOpts = append(h.idemOpts, opts...)
	}
}

// NewHandler constructs a Handler over store.
func NewHandler(store *Store, opts ...HandlerOption) *Handler {
	h := &Handler{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the endpoints on r, which is expected to be mounted at /api.
func (h *Handler) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.status)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/leads", h.listLeads)
	r.With(idempotency.Middleware(h.idempotency, h.idemOpts...)).Post("/leads", h.createLead)
	r.Get("/leads/{id}", h.getLead)
	r.Patch("/leads/{id}", h.updateLead)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "He-Ara API is running"})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.store.Products())
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.Product(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		filter api.LeadFilter
		verr   ValidationError
	)
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		filter.Status = api.LeadStatus(raw)
		checkStatus(&verr, filter.Status)
	}
	if raw := strings.TrimSpace(query.Get("start_date")); raw != "" {
		ts, err := api.ParseTimestamp(raw)
		if err != nil {
			verr.add("start_date", "invalid datetime format")
		}
		filter.Since = ts.Time
	}
	if raw := strings.TrimSpace(query.Get("end_date")); raw != "" {
		ts, err := api.ParseTimestamp(raw)
		if err != nil {
			verr.add("end_date", "invalid datetime format")
		}
		filter.Until = ts.Time
	}
	if len(verr.Fields) > 0 {
		httpx.WriteError(ctx, w, httpx.ValidationError(verr.Fields))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.store.Leads(filter))
}

func (h *Handler) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.store.Lead(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lead)
}

type createLeadRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Message         *string `json:"message"`
	Source          *string `json:"source"`
	ProductInterest *string `json:"productInterest"`
	Status          *string `json:"status"`
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createLeadRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	in := LeadInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Message:         deref(req.Message),
		Source:          deref(req.Source),
		ProductInterest: deref(req.ProductInterest),
		Status:          api.LeadStatus(deref(req.Status)),
	}
	lead, err := h.store.CreateLead(in)
	if err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	observability.FromContext(ctx).Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.String("source", lead.Source),
	)
	httpx.WriteJSON(w, http.StatusCreated, lead)
}

func (h *Handler) updateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := checkID(id); err != nil {
		writeStoreError(ctx, w, err)
		return
	}

	var update api.LeadUpdate
	if !decodeBody(ctx, w, r, &update) {
		return
	}
	lead, err := h.store.UpdateLead(id, update)
	if err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	if update.Status != nil {
		observability.FromContext(ctx).Info("lead status changed",
			zap.String("lead_id", lead.ID),
			zap.String("status", string(lead.Status)),
		)
	}
	httpx.WriteJSON(w, http.StatusOK, lead)
}

func decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := readLimitedBody(r, maxLeadBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errEmptyBody):
			httpx.WriteError(ctx, w, httpx.ValidationError([]string{"body: field required"}))
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError(err.Error(), http.StatusBadRequest))
		}
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(ctx, w, httpx.ValidationError([]string{"body: value is not a valid JSON object"}))
		return false
	}
	return true
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func writeStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(ctx, w, httpx.ValidationError(verr.Fields))
	case errors.Is(err, ErrInvalidID):
		httpx.WriteError(ctx, w, httpx.NewError("Invalid ID format", http.StatusBadRequest))
	case errors.Is(err, ErrLeadNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("Lead not found", http.StatusNotFound))
	case errors.Is(err, ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("Product not found", http.StatusNotFound))
	default:
		observability.FromContext(ctx).Error("dev api failure", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal server error", http.StatusInternalServerError))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
