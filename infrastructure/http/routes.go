package http

import (
	"github.com/go-chi/chi/v5"

	cartpage "pricecheck/frontend/cart"
	catalogpage "pricecheck/frontend/catalog"
	"pricecheck/frontend/login"
	"pricecheck/frontend/price"
	"pricecheck/frontend/scan"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/api/login", login.CreateLoginHandler(s.DB, s.SessionCache))
	s.router.Post("/logout", s.logoutHandler())
}

// RegisterFrontendRoutes registers the authenticated pages.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	cartHandlers := cartpage.NewHandlers(s.DB, s.CartStore, s.TaxRate)

	r.Get("/lookup", price.LookupPageQueryHandler())
	r.Get("/cart/invoice", cartHandlers.InvoicePageHandler)
	r.Get("/cart/invoice.pdf", cartHandlers.InvoicePDFHandler)

	r.Get("/catalog", catalogpage.CatalogPageQueryHandler(s.DB))
	r.Post("/catalog/import", catalogpage.CreateImportHandler(s.DB, s.Audit))
	r.Get("/catalog/labels.pdf", catalogpage.LabelsPDFQueryHandler(s.DB))

	return r
}

// RegisterAPIRoutes registers the JSON endpoints the lookup page calls.
func (s *Server) RegisterAPIRoutes(r chi.Router) chi.Router {
	cartHandlers := cartpage.NewHandlers(s.DB, s.CartStore, s.TaxRate)

	r.Get("/api/price", price.PriceQueryHandler(s.DB))
	r.Get("/api/search", price.SearchQueryHandler(s.DB))
	r.Post("/api/scan", scan.CreateScanHandler(s.DB, s.ScanGate))

	r.Get("/api/cart", cartHandlers.GetCartHandler)
	r.Post("/api/cart/items", cartHandlers.AddItemHandler)
	r.Post("/api/cart/items/{barcode}/adjust", cartHandlers.AdjustItemHandler)
	r.Post("/api/cart/items/{barcode}/quantity", cartHandlers.SetQuantityHandler)
	r.Post("/api/cart/clear", cartHandlers.ClearCartHandler)

	return r
}
