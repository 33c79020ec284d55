package price

// PriceRecord is the display-ready shape of one catalog entry. Barcode is
// the only field guaranteed to be present; the page renders missing fields
// as an em-dash.
type PriceRecord struct {
	ProductName  string `json:"product_name,omitempty"`
	Barcode      string `json:"barcode"`
	PriceExclTax *int64 `json:"price_excl_tax,omitempty"`
	Unit         string `json:"unit,omitempty"`
	ItemNo       string `json:"item_no,omitempty"`
}

type priceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	PriceRecord
}

type searchResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Items   []PriceRecord `json:"items"`
}
