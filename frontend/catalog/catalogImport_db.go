package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/sqlite"
)

func ListCatalogRows(ctx context.Context, db *sqlite.DB) ([]CatalogRow, error) {
	rows := make([]CatalogRow, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT p.id, p.item_no, p.product_name, p.price_excl_tax, COALESCE(p.unit, '') AS unit,
       COALESCE(GROUP_CONCAT(pb.barcode, ', '), '') AS barcodes,
       strftime('%d/%m/%Y %H:%M', p.updated_at) AS updated_at
FROM products p
LEFT JOIN product_barcodes pb ON pb.product_id = p.id
GROUP BY p.id
ORDER BY p.product_name COLLATE NOCASE ASC`).Scan(ctx, &rows)
	})
	return rows, err
}

// ImportCSV merges a product file into the catalog. The header must be
// item_no,product_name,price_excl_tax,unit,barcode; any columns after the
// fifth are read as additional barcodes for the same product. Rows merge by
// item number, and a barcode moves to the row's product if another product
// held it before.
func ImportCSV(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, sessionID string, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return summary, fmt.Errorf("read header: %w", err)
	}
	expected := []string{"item_no", "product_name", "price_excl_tax", "unit", "barcode"}
	if len(header) < len(expected) {
		return summary, fmt.Errorf("invalid CSV header; expected %s", strings.Join(expected, ","))
	}
	for i, want := range expected {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return summary, fmt.Errorf("invalid CSV header; expected %s", strings.Join(expected, ","))
		}
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				summary.Errors++
				continue
			}
			if len(record) < 3 {
				summary.Errors++
				continue
			}

			itemNo := strings.TrimSpace(record[0])
			name := strings.TrimSpace(record[1])
			price, priceErr := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
			if itemNo == "" || name == "" || priceErr != nil || price < 0 {
				summary.Errors++
				continue
			}
			unit := ""
			if len(record) > 3 {
				unit = strings.TrimSpace(record[3])
			}
			barcodes := make([]string, 0, 2)
			for _, raw := range record[4:] {
				if code := strings.TrimSpace(raw); code != "" {
					barcodes = append(barcodes, code)
				}
			}

			var exists int
			if err := tx.NewRaw("SELECT COUNT(1) FROM products WHERE item_no = ?", itemNo).Scan(ctx, &exists); err != nil {
				return err
			}
			if exists > 0 {
				summary.Updated++
			} else {
				summary.Inserted++
			}

			if _, err := tx.ExecContext(ctx, `
INSERT INTO products (item_no, product_name, price_excl_tax, unit, created_at, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(item_no) DO UPDATE SET
  product_name = excluded.product_name,
  price_excl_tax = excluded.price_excl_tax,
  unit = excluded.unit,
  updated_at = CURRENT_TIMESTAMP`, itemNo, name, price, unit); err != nil {
				summary.Errors++
				continue
			}

			var productID int64
			if err := tx.NewRaw("SELECT id FROM products WHERE item_no = ?", itemNo).Scan(ctx, &productID); err != nil {
				return err
			}
			for _, code := range barcodes {
				if _, err := tx.ExecContext(ctx, `
INSERT INTO product_barcodes (barcode, product_id)
VALUES (?, ?)
ON CONFLICT(barcode) DO UPDATE SET product_id = excluded.product_id`, code, productID); err != nil {
					summary.Errors++
				}
			}
		}

		if auditSvc != nil {
			after := map[string]any{"inserted": summary.Inserted, "updated": summary.Updated, "errors": summary.Errors}
			if err := auditSvc.Write(ctx, tx, sessionID, "catalog.import", "products", "import", nil, after); err != nil {
				return err
			}
		}

		return nil
	})
	return summary, err
}
