package cart

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"pricecheck/frontend/shared/html"
)

// InvoicePage renders the printable invoice. It carries its own minimal
// shell rather than the kiosk layout so the print output is just the
// document.
func InvoicePage(inv Invoice) templ.Component {
	var b strings.Builder
	b.WriteString(`<main class="invoice-page">`)
	b.WriteString(`<h1>Price Check Invoice</h1>`)
	b.WriteString(`<p class="invoice-meta">Reference: ` + templ.EscapeString(inv.Reference) + `</p>`)
	b.WriteString(`<p class="invoice-meta">Issued: ` + inv.IssuedAt.Format("02/01/2006 15:04") + `</p>`)

	b.WriteString(`<table class="invoice-lines">`)
	b.WriteString(`<thead><tr><th>Product</th><th>Barcode</th><th>Unit price</th><th>Qty</th><th>Amount</th></tr></thead><tbody>`)
	for _, li := range inv.Lines {
		b.WriteString(`<tr>`)
		b.WriteString(`<td>` + templ.EscapeString(li.ProductName) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(li.Barcode) + `</td>`)
		fmt.Fprintf(&b, `<td class="num">%d</td><td class="num">%d</td><td class="num">%d</td>`, li.UnitPrice, li.Quantity, li.Amount())
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)

	b.WriteString(`<table class="invoice-totals">`)
	fmt.Fprintf(&b, `<tr><td>Subtotal (excl. tax)</td><td class="num">%d</td></tr>`, inv.Subtotal)
	fmt.Fprintf(&b, `<tr><td>Tax (%.1f%%)</td><td class="num">%d</td></tr>`, inv.TaxRate, inv.Tax)
	fmt.Fprintf(&b, `<tr class="grand"><td>Total</td><td class="num">%d</td></tr>`, inv.GrandTotal)
	b.WriteString(`</table>`)

	b.WriteString(`<button class="print-button" onclick="window.print()">Print</button>`)
	b.WriteString(`</main>`)
	return html.Page("Invoice "+inv.Reference, b.String())
}
