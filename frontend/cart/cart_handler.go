package cart

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pricecheck/frontend/price"
	sharedcontext "pricecheck/frontend/shared/context"
	"pricecheck/infrastructure/sqlite"
)

type cartResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Items   []LineItem `json:"items"`
	Summary Summary    `json:"summary"`
}

// Quantity is a pointer so an omitted field (defaults to one) can be told
// apart from an explicit zero (rejected).
type addItemRequest struct {
	Barcode  string `json:"barcode"`
	Quantity *int64 `json:"quantity"`
}

type adjustRequest struct {
	Delta int64 `json:"delta"`
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// Handlers bundles the cart endpoints. Every response carries the full item
// list and a freshly computed summary so the page never has to keep its own
// running totals.
type Handlers struct {
	DB      *sqlite.DB
	Store   *Store
	TaxRate float64
}

func NewHandlers(db *sqlite.DB, store *Store, taxRate float64) *Handlers {
	return &Handlers{DB: db, Store: store, TaxRate: ClampTaxRate(taxRate)}
}

func (h *Handlers) cartFor(r *http.Request) (*Cart, string, bool) {
	session, ok := sharedcontext.GetSessionFromContext(r.Context())
	if !ok {
		return nil, "", false
	}
	return h.Store.ForSession(session.ID), session.ID, true
}

func (h *Handlers) respond(w http.ResponseWriter, status int, c *Cart, message string, success bool) {
	resp := cartResponse{Success: success, Message: message, Items: []LineItem{}}
	if c != nil {
		resp.Items = c.Lines()
		resp.Summary = c.Summarize()
	}
	writeJSON(w, status, resp)
}

// GetCartHandler answers GET /api/cart.
func (h *Handlers) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.cartFor(r)
	if !ok {
		h.respond(w, http.StatusUnauthorized, nil, "session required", false)
		return
	}
	h.respond(w, http.StatusOK, c, "", true)
}

// AddItemHandler answers POST /api/cart/items. The product is looked up
// server side so the cart never trusts client-supplied prices.
func (h *Handlers) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.cartFor(r)
	if !ok {
		h.respond(w, http.StatusUnauthorized, nil, "session required", false)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, c, "invalid request body", false)
		return
	}
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.Barcode == "" {
		h.respond(w, http.StatusBadRequest, c, "barcode is required", false)
		return
	}
	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity == 0 {
		h.respond(w, http.StatusBadRequest, c, ErrZeroQuantity.Error(), false)
		return
	}

	record, err := price.LookupByBarcode(r.Context(), h.DB, req.Barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respond(w, http.StatusOK, c, "no matching barcode", false)
			return
		}
		slog.Error("cart add lookup failed", slog.String("barcode", req.Barcode), slog.Any("err", err))
		h.respond(w, http.StatusInternalServerError, c, "lookup failed", false)
		return
	}
	if record.PriceExclTax == nil {
		h.respond(w, http.StatusOK, c, "item has no price", false)
		return
	}

	item := LineItem{
		ProductName: record.ProductName,
		Barcode:     record.Barcode,
		UnitPrice:   *record.PriceExclTax,
		Unit:        record.Unit,
	}
	if err := c.Add(item, quantity); err != nil {
		h.respond(w, http.StatusBadRequest, c, err.Error(), false)
		return
	}
	h.respond(w, http.StatusOK, c, "", true)
}

// AdjustItemHandler answers POST /api/cart/items/{barcode}/adjust.
func (h *Handlers) AdjustItemHandler(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.cartFor(r)
	if !ok {
		h.respond(w, http.StatusUnauthorized, nil, "session required", false)
		return
	}

	barcode := chi.URLParam(r, "barcode")
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, c, "invalid request body", false)
		return
	}
	if req.Delta == 0 {
		h.respond(w, http.StatusBadRequest, c, "delta must not be zero", false)
		return
	}

	if err := c.Adjust(barcode, req.Delta); err != nil {
		if errors.Is(err, ErrNotInCart) {
			h.respond(w, http.StatusOK, c, "barcode not in cart", false)
			return
		}
		h.respond(w, http.StatusBadRequest, c, err.Error(), false)
		return
	}
	h.respond(w, http.StatusOK, c, "", true)
}

// SetQuantityHandler answers POST /api/cart/items/{barcode}/quantity.
// Quantity zero removes the line.
func (h *Handlers) SetQuantityHandler(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.cartFor(r)
	if !ok {
		h.respond(w, http.StatusUnauthorized, nil, "session required", false)
		return
	}

	barcode := chi.URLParam(r, "barcode")
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, c, "invalid request body", false)
		return
	}

	if err := c.SetQuantity(barcode, req.Quantity); err != nil {
		if errors.Is(err, ErrNotInCart) {
			h.respond(w, http.StatusOK, c, "barcode not in cart", false)
			return
		}
		h.respond(w, http.StatusBadRequest, c, err.Error(), false)
		return
	}
	h.respond(w, http.StatusOK, c, "", true)
}

// ClearCartHandler answers POST /api/cart/clear. Clearing an empty cart is
// not an error, just an informational message.
func (h *Handlers) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.cartFor(r)
	if !ok {
		h.respond(w, http.StatusUnauthorized, nil, "session required", false)
		return
	}

	if !c.Clear() {
		h.respond(w, http.StatusOK, c, "cart is already empty", true)
		return
	}
	h.respond(w, http.StatusOK, c, "", true)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
