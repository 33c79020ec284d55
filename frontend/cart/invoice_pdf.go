package cart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

// renderInvoicePDF lays out an A4 portrait invoice with a Code 128 of the
// invoice reference at the bottom for till-side rescanning.
func renderInvoicePDF(inv Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Reference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "Price Check Invoice", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Reference: "+inv.Reference, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issued: "+inv.IssuedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(70, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "Barcode", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, li := range inv.Lines {
		pdf.CellFormat(70, 8, li.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, li.Barcode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", li.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", li.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", li.Amount()), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(150, 7, "Subtotal (excl. tax)", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, fmt.Sprintf("%d", inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, fmt.Sprintf("Tax (%.1f%%)", inv.TaxRate), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, fmt.Sprintf("%d", inv.Tax), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(150, 9, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 9, fmt.Sprintf("%d", inv.GrandTotal), "", 1, "R", false, 0, "")

	if inv.Reference != "" {
		barcodePNG, err := renderCode128PNG(inv.Reference, 1200, 220)
		if err != nil {
			return nil, err
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("invoice-ref", opt, bytes.NewReader(barcodePNG))
		pageW, pageH := pdf.GetPageSize()
		imgW := 90.0
		imgH := 18.0
		x := (pageW - imgW) / 2
		y := pageH - 40
		pdf.ImageOptions("invoice-ref", x, y, imgW, imgH, false, opt, 0, "")
		pdf.SetY(y + imgH + 2)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, inv.Reference, "", 1, "C", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, normalized); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
