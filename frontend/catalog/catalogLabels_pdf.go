package catalog

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"
	"github.com/jung-kurt/gofpdf"
)

// labelsPerPage lays out shelf labels three across, eight down on A4.
const (
	labelCols    = 3
	labelRows    = 8
	labelMargin  = 8.0
	labelPadding = 2.0
)

// renderShelfLabelsPDF produces one EAN-13 shelf label per catalog row that
// has a barcode. Rows without a barcode, or with one the EAN encoder
// rejects, are skipped rather than failing the whole sheet.
func renderShelfLabelsPDF(rows []CatalogRow, printedAt time.Time) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shelf Labels", false)
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	labelW := (pageW - 2*labelMargin) / labelCols
	labelH := (pageH - 2*labelMargin) / labelRows

	cell := 0
	rendered := 0
	for _, row := range rows {
		code := firstBarcode(row.Barcodes)
		if code == "" {
			continue
		}
		barcodePNG, err := renderEAN13PNG(code, 600, 160)
		if err != nil {
			continue
		}

		if cell%(labelCols*labelRows) == 0 {
			pdf.AddPage()
		}
		col := cell % labelCols
		rowIdx := (cell / labelCols) % labelRows
		x := labelMargin + float64(col)*labelW
		y := labelMargin + float64(rowIdx)*labelH

		pdf.SetLineWidth(0.2)
		pdf.Rect(x, y, labelW, labelH, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetXY(x+labelPadding, y+labelPadding)
		pdf.CellFormat(labelW-2*labelPadding, 4.5, truncateForWidth(pdf, row.ProductName, labelW-2*labelPadding), "", 0, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(x+labelPadding, y+labelPadding+5)
		priceText := fmt.Sprintf("%d", row.PriceExclTax)
		if row.Unit != "" {
			priceText += " / " + row.Unit
		}
		pdf.CellFormat(labelW-2*labelPadding, 7, priceText, "", 0, "L", false, 0, "")

		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := fmt.Sprintf("shelf-label-%d", row.ID)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
		imgW := labelW - 2*labelPadding
		imgH := labelH - 20
		if imgH < 8 {
			imgH = 8
		}
		pdf.ImageOptions(imageName, x+labelPadding, y+13, imgW, imgH, false, opt, 0, "")

		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(x+labelPadding, y+labelH-4.5)
		pdf.CellFormat(labelW-2*labelPadding, 3.5, code+"  "+row.ItemNo, "", 0, "C", false, 0, "")

		cell++
		rendered++
	}

	if rendered == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf.SetY(-12)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(0, 4, "Printed "+printedAt.Format("02/01/2006"), "", 0, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func firstBarcode(joined string) string {
	code, _, _ := strings.Cut(joined, ",")
	return strings.TrimSpace(code)
}

func truncateForWidth(pdf *gofpdf.Fpdf, text string, maxWidth float64) string {
	for len(text) > 4 && pdf.GetStringWidth(text) > maxWidth {
		text = text[:len(text)-4] + "..."
	}
	return text
}

func renderEAN13PNG(value string, width, height int) ([]byte, error) {
	code, err := ean.Encode(value)
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
