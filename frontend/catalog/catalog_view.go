package catalog

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"pricecheck/frontend/shared/html"
	"pricecheck/frontend/shared/nav"
)

// CatalogPage renders the product list with the CSV upload form.
func CatalogPage(rows []CatalogRow, flash, errorMessage string) templ.Component {
	var b strings.Builder
	b.WriteString(nav.TopNav("catalog"))
	b.WriteString(`<main class="catalog-page">`)
	b.WriteString(`<h1>Catalog</h1>`)

	if errorMessage != "" {
		b.WriteString(`<p class="error-banner">` + templ.EscapeString(errorMessage) + `</p>`)
	}
	if flash != "" {
		b.WriteString(`<p class="flash-banner">` + templ.EscapeString(flash) + `</p>`)
	}

	b.WriteString(`<section class="catalog-actions">`)
	b.WriteString(`<form method="post" action="/catalog/import" enctype="multipart/form-data">`)
	b.WriteString(`<input type="hidden" name="_csrf" value="" data-csrf="1">`)
	b.WriteString(`<input type="file" name="file" accept=".csv" required>`)
	b.WriteString(`<button type="submit">Import CSV</button>`)
	b.WriteString(`</form>`)
	b.WriteString(`<a class="button" href="/catalog/labels.pdf" target="_blank">Shelf labels PDF</a>`)
	b.WriteString(`</section>`)

	if len(rows) == 0 {
		b.WriteString(`<p>No products yet. Import a CSV with columns item_no,product_name,price_excl_tax,unit,barcode.</p>`)
	} else {
		b.WriteString(`<table class="catalog-table">`)
		b.WriteString(`<thead><tr><th>Item no</th><th>Product</th><th>Price</th><th>Unit</th><th>Barcodes</th><th>Updated</th></tr></thead><tbody>`)
		for _, row := range rows {
			b.WriteString(`<tr>`)
			b.WriteString(`<td>` + templ.EscapeString(row.ItemNo) + `</td>`)
			b.WriteString(`<td>` + templ.EscapeString(row.ProductName) + `</td>`)
			fmt.Fprintf(&b, `<td class="num">%d</td>`, row.PriceExclTax)
			b.WriteString(`<td>` + templ.EscapeString(row.Unit) + `</td>`)
			b.WriteString(`<td>` + templ.EscapeString(row.Barcodes) + `</td>`)
			b.WriteString(`<td>` + templ.EscapeString(row.UpdatedAt) + `</td>`)
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
	}

	b.WriteString(`</main>`)
	return html.Page("Catalog - Price Check", b.String())
}
