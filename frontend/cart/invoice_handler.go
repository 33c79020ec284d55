package cart

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedcontext "pricecheck/frontend/shared/context"
)

func invoiceReference(sessionID string, at time.Time) string {
	suffix := sessionID
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("INV-%s-%s", at.Format("20060102-150405"), suffix)
}

// requestedRate reads the rate query parameter so the caller can price the
// invoice at a rate of their choosing. A missing or unparseable value falls
// back to the configured default; out-of-range values clamp like any other
// rate.
func (h *Handlers) requestedRate(r *http.Request) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get("rate"))
	if raw == "" {
		return h.TaxRate
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return h.TaxRate
	}
	return ClampTaxRate(rate)
}

// InvoicePageHandler answers GET /cart/invoice with the printable page.
func (h *Handlers) InvoicePageHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sharedcontext.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	now := time.Now()
	inv := BuildInvoice(h.Store.ForSession(session.ID), h.requestedRate(r), invoiceReference(session.ID, now), now)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := InvoicePage(inv).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render invoice", http.StatusInternalServerError)
	}
}

// InvoicePDFHandler answers GET /cart/invoice.pdf.
func (h *Handlers) InvoicePDFHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sharedcontext.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	now := time.Now()
	inv := BuildInvoice(h.Store.ForSession(session.ID), h.requestedRate(r), invoiceReference(session.ID, now), now)

	pdfBytes, err := renderInvoicePDF(inv)
	if err != nil {
		slog.Error("invoice pdf render failed", slog.String("reference", inv.Reference), slog.Any("err", err))
		http.Error(w, "failed to render invoice pdf", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", inv.Reference+".pdf"))
	_, _ = w.Write(pdfBytes)
}
