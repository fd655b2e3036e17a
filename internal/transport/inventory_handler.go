package transport

import (
	"net/http"

	"inventory-api/internal/middleware"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ValuationResponse wraps the total stock value
type ValuationResponse struct {
	Valuation decimal.Decimal `json:"valuation"`
}

// InventoryHandler serves the reporting endpoints
type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers the read-only inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/low-stock", h.LowStock)
		r.Get("/valuation", h.Valuation)
		r.Get("/summary", h.Summary)
	})
}

// LowStock returns active products at or below their minimum stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventoryService.LowStock(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Valuation returns the summed price times stock of active products
func (h *InventoryHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	total, err := h.inventoryService.Valuation(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ValuationResponse{Valuation: total})
}

// Summary returns the dashboard counts and totals
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.inventoryService.Summary(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}
