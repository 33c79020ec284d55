package price

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pricecheck/infrastructure/sqlite"
)

// LookupPageQueryHandler renders the kiosk lookup screen.
func LookupPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := LookupPage().Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render lookup page", http.StatusInternalServerError)
			return
		}
	}
}

// PriceQueryHandler answers GET /api/price?barcode=.
//
// Not-found is a well-formed {success:false, message} payload, distinct from
// transport errors.
func PriceQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barcode := strings.TrimSpace(r.URL.Query().Get("barcode"))
		if barcode == "" {
			writeJSON(w, http.StatusBadRequest, priceResponse{Success: false, Message: "barcode is required"})
			return
		}

		record, err := LookupByBarcode(r.Context(), db, barcode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusOK, priceResponse{
					Success:     false,
					Message:     "no matching barcode",
					PriceRecord: PriceRecord{Barcode: barcode},
				})
				return
			}
			slog.Error("price lookup failed", slog.String("barcode", barcode), slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, priceResponse{Success: false, Message: "lookup failed"})
			return
		}

		writeJSON(w, http.StatusOK, priceResponse{Success: true, PriceRecord: record})
	}
}

// SearchQueryHandler answers GET /api/search?q=. Zero matches is a success
// with an empty list.
func SearchQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeJSON(w, http.StatusBadRequest, searchResponse{Success: false, Message: "keyword is required", Items: []PriceRecord{}})
			return
		}

		items, err := SearchByKeyword(r.Context(), db, q)
		if err != nil {
			slog.Error("keyword search failed", slog.String("q", q), slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, searchResponse{Success: false, Message: "search failed", Items: []PriceRecord{}})
			return
		}

		writeJSON(w, http.StatusOK, searchResponse{Success: true, Items: items})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
