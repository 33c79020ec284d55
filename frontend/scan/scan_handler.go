package scan

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pricecheck/frontend/price"
	sharedcontext "pricecheck/frontend/shared/context"
	"pricecheck/infrastructure/sqlite"
)

type scanRequest struct {
	Code   string `json:"code"`
	Format string `json:"format"`
}

type scanResponse struct {
	Success  bool   `json:"success"`
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
	price.PriceRecord
}

// CreateScanHandler answers POST /api/scan. Rejected detections are not
// errors: the camera fires constantly and most frames are noise, so the
// response is success with accepted=false and the page stays quiet.
func CreateScanHandler(db *sqlite.DB, gate *Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sharedcontext.GetSessionFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, scanResponse{Success: false, Message: "session required"})
			return
		}

		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, scanResponse{Success: false, Message: "invalid request body"})
			return
		}
		req.Code = strings.TrimSpace(req.Code)
		req.Format = strings.TrimSpace(req.Format)

		if !gate.Accept(session.ID, req.Code, req.Format) {
			writeJSON(w, http.StatusOK, scanResponse{Success: true, Accepted: false})
			return
		}

		record, err := price.LookupByBarcode(r.Context(), db, req.Code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusOK, scanResponse{
					Success:     false,
					Accepted:    true,
					Message:     "no matching barcode",
					PriceRecord: price.PriceRecord{Barcode: req.Code},
				})
				return
			}
			slog.Error("scan lookup failed", slog.String("code", req.Code), slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, scanResponse{Success: false, Message: "lookup failed"})
			return
		}

		writeJSON(w, http.StatusOK, scanResponse{Success: true, Accepted: true, PriceRecord: record})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
