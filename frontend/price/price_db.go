package price

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"pricecheck/infrastructure/sqlite"
)

// LookupByBarcode resolves a barcode to its price record. The lookup is
// two-step on purpose: the barcode table decides existence, the product
// master supplies the display fields. Missing products surface as
// sql.ErrNoRows.
func LookupByBarcode(ctx context.Context, db *sqlite.DB, barcode string) (PriceRecord, error) {
	record := PriceRecord{Barcode: barcode}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var productID int64
		if err := tx.NewRaw(`
SELECT product_id FROM product_barcodes WHERE barcode = ?`, barcode).Scan(ctx, &productID); err != nil {
			return err
		}

		var row struct {
			ItemNo       string `bun:"item_no"`
			ProductName  string `bun:"product_name"`
			PriceExclTax int64  `bun:"price_excl_tax"`
			Unit         string `bun:"unit"`
		}
		if err := tx.NewRaw(`
SELECT item_no, product_name, price_excl_tax, COALESCE(unit, '') AS unit
FROM products
WHERE id = ?`, productID).Scan(ctx, &row); err != nil {
			return err
		}

		price := row.PriceExclTax
		record.ItemNo = row.ItemNo
		record.ProductName = row.ProductName
		record.PriceExclTax = &price
		record.Unit = row.Unit
		return nil
	})
	if err != nil {
		return PriceRecord{Barcode: barcode}, err
	}
	return record, nil
}

// SearchByKeyword matches product name or item number. An empty keyword and
// a keyword with no matches both return an empty list, not an error.
func SearchByKeyword(ctx context.Context, db *sqlite.DB, q string) ([]PriceRecord, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []PriceRecord{}, nil
	}

	var rows []struct {
		ItemNo       string `bun:"item_no"`
		ProductName  string `bun:"product_name"`
		PriceExclTax int64  `bun:"price_excl_tax"`
		Unit         string `bun:"unit"`
		Barcode      string `bun:"barcode"`
	}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT p.item_no, p.product_name, p.price_excl_tax, COALESCE(p.unit, '') AS unit,
       COALESCE(MIN(pb.barcode), '') AS barcode
FROM products p
LEFT JOIN product_barcodes pb ON pb.product_id = p.id
WHERE p.product_name LIKE ? OR p.item_no LIKE ?
GROUP BY p.id
ORDER BY p.product_name COLLATE NOCASE ASC
LIMIT 20`, "%"+q+"%", "%"+q+"%").Scan(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}

	records := make([]PriceRecord, 0, len(rows))
	for _, row := range rows {
		price := row.PriceExclTax
		records = append(records, PriceRecord{
			ItemNo:       row.ItemNo,
			ProductName:  row.ProductName,
			PriceExclTax: &price,
			Unit:         row.Unit,
			Barcode:      row.Barcode,
		})
	}
	return records, nil
}
