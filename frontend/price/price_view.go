package price

import (
	"strings"

	"github.com/a-h/templ"

	"pricecheck/frontend/shared/html"
	"pricecheck/frontend/shared/nav"
)

// LookupPage renders the kiosk screen. All of its panels start hidden; the
// page script drives visibility from lookup, scan, and cart responses.
func LookupPage() templ.Component {
	var b strings.Builder
	b.WriteString(nav.TopNav("lookup"))
	b.WriteString(`<main class="lookup-page">`)

	b.WriteString(`<section class="lookup-entry">`)
	b.WriteString(`<form id="lookup-form" autocomplete="off">`)
	b.WriteString(`<input id="lookup-input" name="barcode" inputmode="numeric" placeholder="Scan or type a barcode" autofocus>`)
	b.WriteString(`<button type="submit">Look up</button>`)
	b.WriteString(`<button type="button" id="scan-toggle">Scan</button>`)
	b.WriteString(`</form>`)
	b.WriteString(`<div id="scanner-viewport" hidden></div>`)
	b.WriteString(`</section>`)

	b.WriteString(`<section id="result-panel" class="result-panel" hidden>`)
	b.WriteString(`<h2 id="result-name">&mdash;</h2>`)
	b.WriteString(`<p class="result-price"><span id="result-price">&mdash;</span> <span id="result-unit"></span></p>`)
	b.WriteString(`<dl class="result-meta">`)
	b.WriteString(`<dt>Barcode</dt><dd id="result-barcode">&mdash;</dd>`)
	b.WriteString(`<dt>Item no</dt><dd id="result-itemno">&mdash;</dd>`)
	b.WriteString(`</dl>`)
	b.WriteString(`<div class="result-actions">`)
	b.WriteString(`<label for="result-qty">Qty</label>`)
	b.WriteString(`<input id="result-qty" type="number" min="1" step="1" value="1">`)
	b.WriteString(`<button type="button" id="add-to-cart">Add to cart</button>`)
	b.WriteString(`</div>`)
	b.WriteString(`</section>`)

	b.WriteString(`<p id="lookup-error" class="error-banner" hidden></p>`)

	b.WriteString(`<section class="search-section">`)
	b.WriteString(`<form id="search-form" autocomplete="off">`)
	b.WriteString(`<input id="search-input" name="q" placeholder="Search by name or item number">`)
	b.WriteString(`<button type="submit">Search</button>`)
	b.WriteString(`</form>`)
	b.WriteString(`<table id="search-results" class="search-results" hidden>`)
	b.WriteString(`<thead><tr><th>Item no</th><th>Product</th><th>Price</th><th>Unit</th><th>Barcode</th></tr></thead>`)
	b.WriteString(`<tbody></tbody>`)
	b.WriteString(`</table>`)
	b.WriteString(`<p id="search-empty" hidden>No products matched.</p>`)
	b.WriteString(`</section>`)

	b.WriteString(`<section id="cart-panel" class="cart-panel" hidden>`)
	b.WriteString(`<h2>Cart</h2>`)
	b.WriteString(`<table id="cart-table">`)
	b.WriteString(`<thead><tr><th>Product</th><th>Unit price</th><th>Qty</th><th>Amount</th><th></th></tr></thead>`)
	b.WriteString(`<tbody></tbody>`)
	b.WriteString(`</table>`)
	b.WriteString(`<p class="cart-summary">Items: <span id="cart-total-qty">0</span> &middot; Total: <span id="cart-total-amount">0</span></p>`)
	b.WriteString(`<div class="cart-actions">`)
	b.WriteString(`<label for="cart-tax-rate">Tax %</label>`)
	b.WriteString(`<input id="cart-tax-rate" type="number" min="0" step="0.1" placeholder="0">`)
	b.WriteString(`<button type="button" id="cart-clear">Clear</button>`)
	b.WriteString(`<button type="button" id="cart-invoice">Invoice</button>`)
	b.WriteString(`</div>`)
	b.WriteString(`</section>`)
	b.WriteString(`<p id="cart-message" class="cart-message" hidden></p>`)

	b.WriteString(`<dialog id="invoice-dialog">`)
	b.WriteString(`<h2>Invoice</h2>`)
	b.WriteString(`<div id="invoice-body"></div>`)
	b.WriteString(`<div class="dialog-actions">`)
	b.WriteString(`<a id="invoice-pdf" href="/cart/invoice.pdf" target="_blank">PDF</a>`)
	b.WriteString(`<a id="invoice-print" href="/cart/invoice" target="_blank">Print view</a>`)
	b.WriteString(`<button type="button" id="invoice-close">Close</button>`)
	b.WriteString(`</div>`)
	b.WriteString(`</dialog>`)

	b.WriteString(`</main>`)
	return html.Page("Lookup - Price Check", b.String())
}
