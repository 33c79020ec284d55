package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	sharedcontext "pricecheck/frontend/shared/context"
	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/sqlite"
)

const maxImportSize = 10 << 20 // 10 MiB upload cap

// CatalogPageQueryHandler answers GET /catalog.
func CatalogPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := ListCatalogRows(r.Context(), db)
		if err != nil {
			slog.Error("list catalog failed", slog.Any("err", err))
			http.Error(w, "failed to load catalog", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := CatalogPage(rows, r.URL.Query().Get("flash"), r.URL.Query().Get("error"))
		if err := page.Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render catalog", http.StatusInternalServerError)
		}
	}
}

// CreateImportHandler answers POST /catalog/import. Outcomes travel back to
// the catalog page as query parameters, in the redirect-after-post style.
func CreateImportHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sharedcontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			redirectCatalogError(w, r, "upload too large or malformed")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			redirectCatalogError(w, r, "choose a CSV file to import")
			return
		}
		defer file.Close()

		summary, err := ImportCSV(r.Context(), db, auditSvc, session.ID, file)
		if err != nil {
			slog.Error("catalog import failed", slog.Any("err", err))
			redirectCatalogError(w, r, err.Error())
			return
		}

		flash := fmt.Sprintf("Imported %d new, updated %d, %d rows skipped", summary.Inserted, summary.Updated, summary.Errors)
		http.Redirect(w, r, "/catalog?flash="+url.QueryEscape(flash), http.StatusSeeOther)
	}
}

// LabelsPDFQueryHandler answers GET /catalog/labels.pdf with one EAN-13
// shelf label per barcoded product.
func LabelsPDFQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := ListCatalogRows(r.Context(), db)
		if err != nil {
			slog.Error("list catalog for labels failed", slog.Any("err", err))
			http.Error(w, "failed to load catalog", http.StatusInternalServerError)
			return
		}

		pdfBytes, err := renderShelfLabelsPDF(rows, time.Now())
		if err != nil {
			redirectCatalogError(w, r, "no barcoded products to label")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="shelf-labels.pdf"`)
		_, _ = w.Write(pdfBytes)
	}
}

func redirectCatalogError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/catalog?error="+url.QueryEscape(message), http.StatusSeeOther)
}
