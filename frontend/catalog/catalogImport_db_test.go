package catalog

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"pricecheck/infrastructure/sqlite"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

const importHeader = "item_no,product_name,price_excl_tax,unit,barcode\n"

func TestImportCSVInsertsAndUpdates(t *testing.T) {
	db := openTestDB(t)

	first := importHeader +
		"A-100,Olive Oil 1L,1250,bottle,4006381333931\n" +
		"B-300,Rice 10kg,2100,bag,\n"
	summary, err := ImportCSV(context.Background(), db, nil, "session-1", strings.NewReader(first))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if summary.Inserted != 2 || summary.Updated != 0 || summary.Errors != 0 {
		t.Fatalf("unexpected first summary: %+v", summary)
	}

	// Reimporting the same item number updates in place.
	second := importHeader + "A-100,Olive Oil 1L,1300,bottle,4006381333931\n"
	summary, err = ImportCSV(context.Background(), db, nil, "session-1", strings.NewReader(second))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Inserted != 0 || summary.Updated != 1 {
		t.Fatalf("unexpected second summary: %+v", summary)
	}

	rows, err := ListCatalogRows(context.Background(), db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 products, got %d", len(rows))
	}
	for _, row := range rows {
		if row.ItemNo == "A-100" && row.PriceExclTax != 1300 {
			t.Fatalf("expected updated price 1300, got %d", row.PriceExclTax)
		}
	}
}

func TestImportCSVExtraBarcodeColumns(t *testing.T) {
	db := openTestDB(t)

	data := importHeader + "A-200,Olive Oil 5L,5400,can,4006381333948,4006381333955\n"
	summary, err := ImportCSV(context.Background(), db, nil, "session-1", strings.NewReader(data))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Inserted != 1 || summary.Errors != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	var count int64
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM product_barcodes`).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count barcodes: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 barcodes, got %d", count)
	}
}

func TestImportCSVMovesBarcodeBetweenProducts(t *testing.T) {
	db := openTestDB(t)

	data := importHeader +
		"A-100,Olive Oil 1L,1250,bottle,4006381333931\n" +
		"A-200,Olive Oil 5L,5400,can,4006381333931\n"
	if _, err := ImportCSV(context.Background(), db, nil, "session-1", strings.NewReader(data)); err != nil {
		t.Fatalf("import: %v", err)
	}

	var itemNo string
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT p.item_no FROM product_barcodes pb
JOIN products p ON p.id = pb.product_id
WHERE pb.barcode = ?`, "4006381333931").Scan(ctx, &itemNo)
	})
	if err != nil {
		t.Fatalf("resolve barcode: %v", err)
	}
	if itemNo != "A-200" {
		t.Fatalf("expected barcode to follow the later row, got %s", itemNo)
	}
}

func TestImportCSVCountsBadRows(t *testing.T) {
	db := openTestDB(t)

	data := importHeader +
		",Missing Item No,100,each,\n" +
		"C-1,No Price,not-a-number,each,\n" +
		"C-2,Negative,-5,each,\n" +
		"C-3,Good,100,each,\n"
	summary, err := ImportCSV(context.Background(), db, nil, "session-1", strings.NewReader(data))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Inserted != 1 || summary.Errors != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestImportCSVRejectsBadHeader(t *testing.T) {
	db := openTestDB(t)

	if _, err := ImportCSV(context.Background(), db, nil, "session-1", strings.NewReader("sku,description\nA,B\n")); err == nil {
		t.Fatalf("expected header rejection")
	}
}

func TestRenderShelfLabelsPDF(t *testing.T) {
	rows := []CatalogRow{
		{ID: 1, ItemNo: "A-100", ProductName: "Olive Oil 1L", PriceExclTax: 1250, Unit: "bottle", Barcodes: "4006381333931"},
		{ID: 2, ItemNo: "B-300", ProductName: "Rice 10kg", PriceExclTax: 2100, Unit: "bag", Barcodes: ""},
	}
	pdfBytes, err := renderShelfLabelsPDF(rows, time.Now())
	if err != nil {
		t.Fatalf("render labels: %v", err)
	}
	if !strings.HasPrefix(string(pdfBytes), "%PDF") {
		t.Fatalf("expected PDF output")
	}
}

func TestRenderShelfLabelsPDFNoBarcodes(t *testing.T) {
	rows := []CatalogRow{{ID: 1, ItemNo: "B-300", ProductName: "Rice 10kg", PriceExclTax: 2100, Barcodes: ""}}
	if _, err := renderShelfLabelsPDF(rows, time.Now()); err == nil {
		t.Fatalf("expected error when nothing can be labelled")
	}
}
