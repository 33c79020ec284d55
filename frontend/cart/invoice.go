package cart

import (
	"math"
	"time"
)

// Invoice is the priced-out view of a cart at one tax rate. Tax is rounded
// once on the subtotal, never per line.
type Invoice struct {
	Reference  string     `json:"reference"`
	IssuedAt   time.Time  `json:"issued_at"`
	Lines      []LineItem `json:"lines"`
	TaxRate    float64    `json:"tax_rate"`
	Subtotal   int64      `json:"subtotal"`
	Tax        int64      `json:"tax"`
	GrandTotal int64      `json:"grand_total"`
}

// ClampTaxRate normalizes a tax rate percentage. Negative and non-finite
// rates become zero.
func ClampTaxRate(ratePercent float64) float64 {
	if math.IsNaN(ratePercent) || math.IsInf(ratePercent, 0) || ratePercent < 0 {
		return 0
	}
	return ratePercent
}

// BuildInvoice prices out the cart's current lines. The cart itself is not
// modified; issuing an invoice twice from the same cart gives the same
// totals.
func BuildInvoice(c *Cart, ratePercent float64, reference string, issuedAt time.Time) Invoice {
	rate := ClampTaxRate(ratePercent)
	lines := c.Lines()

	var subtotal int64
	for _, li := range lines {
		subtotal += li.Amount()
	}
	tax := int64(math.Round(float64(subtotal) * rate / 100))

	return Invoice{
		Reference:  reference,
		IssuedAt:   issuedAt,
		Lines:      lines,
		TaxRate:    rate,
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal + tax,
	}
}
