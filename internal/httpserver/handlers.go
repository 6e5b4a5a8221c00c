package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/middleware"
	"finitefield.org/heara-web/internal/pages"
	"finitefield.org/heara-web/internal/platform/observability"
)

var startTime = time.Now()

// health responds with a simple status payload for monitoring and readiness checks.
func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	payload := map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type pageHandlers struct {
	renderer       *pages.Renderer
	fallback       string
	products       ProductLister
	productTimeout time.Duration
}

func (h *pageHandlers) landing(w http.ResponseWriter, r *http.Request) {
	data := h.renderer.Data(pages.Landing, middleware.Lang(r, h.fallback))
	if h.products != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.productTimeout)
		products, err := h.products.ListProducts(ctx)
		cancel()
		if err != nil {
			// The select degrades to "any product"; the carousel reports the failure itself.
			observability.FromContext(r.Context()).Warn("list products for form", zap.Error(err))
		} else {
			data.Products = products
		}
	}
	h.render(w, r, pages.Landing, data)
}

func (h *pageHandlers) admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.Admin, h.renderer.Data(pages.Admin, middleware.Lang(r, h.fallback)))
}

func (h *pageHandlers) render(w http.ResponseWriter, r *http.Request, page string, data pages.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, data); err != nil {
		observability.FromContext(r.Context()).Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
	}
}
