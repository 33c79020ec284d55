package catalog

// ImportSummary counts the outcome of one CSV import run.
type ImportSummary struct {
	Inserted int
	Updated  int
	Errors   int
}

// CatalogRow is one product as shown on the catalog page, with its barcodes
// flattened for display.
type CatalogRow struct {
	ID           int64  `bun:"id"`
	ItemNo       string `bun:"item_no"`
	ProductName  string `bun:"product_name"`
	PriceExclTax int64  `bun:"price_excl_tax"`
	Unit         string `bun:"unit"`
	Barcodes     string `bun:"barcodes"`
	UpdatedAt    string `bun:"updated_at"`
}
