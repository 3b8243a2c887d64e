package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultPaperWidthMM = 80.0
	minPaperWidthMM     = 40.0
	maxPaperWidthMM     = 120.0

	pdfMarginMM   = 4.0
	pdfRuleMM     = 3.0
	pdfBlankMM    = 2.5
	pdfMinPageMM  = 40.0
	ptToMM        = 25.4 / 72
	pdfLineFactor = 1.35
	pdfFontFamily = "Helvetica"
)

type pdfRow struct {
	left, right string
	align       Align
	bold, large bool
	rule        bool
	height      float64
}

// RenderPDF lays the receipt out on a single page whose height follows the
// content. Document dates come from the transaction so identical input gives
// identical bytes.
func RenderPDF(r *models.ReceiptData, opts models.PDFOptions) ([]byte, error) {
	width := opts.PaperWidth
	if width == 0 {
		width = DefaultPaperWidthMM
	}
	if width < minPaperWidthMM || width > maxPaperWidthMM {
		return nil, fmt.Errorf("%w: paperWidth must be between %.0f and %.0f mm", ErrInvalidOptions, minPaperWidthMM, maxPaperWidthMM)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: width, Ht: pdfMinPageMM},
	})
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(r.TransactionDate)
	pdf.SetModificationDate(r.TransactionDate)
	pdf.SetTitle(r.FileBase(), true)
	pdf.SetAuthor(r.Business.Name, true)
	pdf.SetCreator("BillForge", false)
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(false, 0)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	baseSize := 9.0
	if width < 70 {
		baseSize = 7.5
	}

	rows := planPDF(pdf, tr, BuildLayoutFor(r, pdfCanShow), width-2*pdfMarginMM, baseSize)

	height := 2 * pdfMarginMM
	for _, row := range rows {
		height += row.height
	}
	if height < pdfMinPageMM {
		height = pdfMinPageMM
	}

	pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
	drawPDF(pdf, rows, width-2*pdfMarginMM, baseSize)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf layout: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfCanShow reports whether the core fonts, which are cp1252, can draw s.
func pdfCanShow(s string) bool {
	_, err := charmap.Windows1252.NewEncoder().String(s)
	return err == nil
}

func setPDFFont(pdf *fpdf.Fpdf, bold, large bool, base float64) float64 {
	style := ""
	if bold {
		style = "B"
	}
	size := base
	if large {
		size = base * 1.35
	}
	pdf.SetFont(pdfFontFamily, style, size)
	return size * ptToMM * pdfLineFactor
}

// planPDF wraps every layout line to the content width. Text is measured and
// stored in the PDF's cp1252 encoding.
func planPDF(pdf *fpdf.Fpdf, tr func(string) string, lines []Line, contentW, base float64) []pdfRow {
	var rows []pdfRow
	for _, ln := range lines {
		switch ln.Kind {
		case LineRule:
			rows = append(rows, pdfRow{rule: true, height: pdfRuleMM})
		case LineBlank:
			rows = append(rows, pdfRow{height: pdfBlankMM})
		case LineText:
			lh := setPDFFont(pdf, ln.Bold, ln.Large, base)
			measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
			for _, part := range WrapText(ln.Text, contentW, measure) {
				rows = append(rows, pdfRow{left: tr(part), align: ln.Align, bold: ln.Bold, large: ln.Large, height: lh})
			}
		case LinePair:
			lh := setPDFFont(pdf, ln.Bold, ln.Large, base)
			measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
			right := tr(ln.Right)
			leftW := contentW - pdf.GetStringWidth(right) - 2
			if leftW < contentW*0.4 {
				for _, part := range WrapText(ln.Text, contentW, measure) {
					rows = append(rows, pdfRow{left: tr(part), bold: ln.Bold, large: ln.Large, height: lh})
				}
				rows = append(rows, pdfRow{right: right, bold: ln.Bold, large: ln.Large, height: lh})
				continue
			}
			for i, part := range WrapText(ln.Text, leftW, measure) {
				row := pdfRow{left: tr(part), bold: ln.Bold, large: ln.Large, height: lh}
				if i == 0 {
					row.right = right
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func drawPDF(pdf *fpdf.Fpdf, rows []pdfRow, contentW, base float64) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.SetXY(pdfMarginMM, pdfMarginMM)

	for _, row := range rows {
		y := pdf.GetY()
		if row.rule {
			pdf.SetDashPattern([]float64{0.8, 0.6}, 0)
			pdf.Line(pdfMarginMM, y+row.height/2, pdfMarginMM+contentW, y+row.height/2)
			pdf.SetDashPattern([]float64{}, 0)
			pdf.SetXY(pdfMarginMM, y+row.height)
			continue
		}
		if row.left == "" && row.right == "" {
			pdf.SetXY(pdfMarginMM, y+row.height)
			continue
		}

		setPDFFont(pdf, row.bold, row.large, base)
		align := "L"
		switch row.align {
		case AlignCenter:
			align = "C"
		case AlignRight:
			align = "R"
		}
		if row.left != "" {
			pdf.SetXY(pdfMarginMM, y)
			pdf.CellFormat(contentW, row.height, row.left, "", 0, align+"M", false, 0, "")
		}
		if row.right != "" {
			pdf.SetXY(pdfMarginMM, y)
			pdf.CellFormat(contentW, row.height, row.right, "", 0, "RM", false, 0, "")
		}
		pdf.SetXY(pdfMarginMM, y+row.height)
	}
}
