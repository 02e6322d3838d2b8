package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/led_mixbin_go/internal/result"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// pdfStyler holds reusable styling and state for PDF generation.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - (2 * pdfMargin),
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 8)
		s.pdf.SetTextColor(50, 50, 50)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.pdf.AddPage()
		s.currentY = s.contentTopY
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY()
	s.currentY += 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
	if s.currentY > s.pageHeight {
		s.pdf.AddPage()
		s.currentY = s.contentTopY
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string, styleName string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.Image(imageName, pdfMargin, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, styleName, "C")
	}
	s.addSpacer(2)
}

// BuildSummaryPDF writes the voltage summary report: one table of all
// combinations with their mix descriptions and HDI voltage ranges, followed
// by one distribution curve page per combination for which an image was
// rendered.
func BuildSummaryPDF(filepath string, rows []result.SummaryRow, trialCount int, curveImages map[int][]byte) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph(fmt.Sprintf("LED Mix-Bin Voltage Simulation Report (%d Trials per Combination)", trialCount), "h1", "C")
	styler.addSpacer(5)

	if len(rows) == 0 {
		styler.writeParagraph("No combinations were simulated.", "normal", "L")
		return pdf.OutputFileAndClose(filepath)
	}

	styler.writeParagraph("Voltage Ranges by Combination", "h2", "L")

	headers := []string{"Combo", "Mix Description", "HDI Min (V)", "Median (V)", "HDI Max (V)"}
	colWidthsRel := []float64{0.06, 0.58, 0.12, 0.12, 0.12}
	colWidthsAbs := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidthsAbs[i] = rel * pdfContentWidth
	}

	styler.checkAddPage(styler.lineHeight * 2)
	sY := styler.currentY
	sX := pdfMargin
	styler.applyStyle("tableHeader")
	for i, header := range headers {
		styler.pdf.SetXY(sX, sY)
		styler.pdf.CellFormat(colWidthsAbs[i], styler.lineHeight, header, "1", 0, "C", true, 0, "")
		sX += colWidthsAbs[i]
	}
	sY += styler.lineHeight
	styler.currentY = sY

	for _, row := range rows {
		styler.checkAddPage(styler.lineHeight)
		sY = styler.currentY
		sX = pdfMargin
		rowData := []string{
			fmt.Sprintf("%d", row.Ordinal),
			row.Description,
			fmt.Sprintf("%.4f", row.Min),
			fmt.Sprintf("%.4f", row.Median),
			fmt.Sprintf("%.4f", row.Max),
		}
		styler.applyStyle("tableCell")
		for i, cellData := range rowData {
			align := "C"
			if i == 1 {
				align = "L"
			}
			styler.pdf.SetXY(sX, sY)
			styler.pdf.CellFormat(colWidthsAbs[i], styler.lineHeight, cellData, "1", 0, align, false, 0, "")
			sX += colWidthsAbs[i]
		}
		sY += styler.lineHeight
		styler.currentY = sY
	}
	styler.addSpacer(5)

	imgWidth := pdfContentWidth * 0.9
	imgHeight := imgWidth * (4.0 / 8.0)

	for _, row := range rows {
		imgBytes, ok := curveImages[row.Ordinal]
		if !ok || len(imgBytes) == 0 {
			continue
		}
		styler.pdf.AddPage()
		styler.currentY = styler.contentTopY
		styler.writeParagraph(fmt.Sprintf("Combination %d", row.Ordinal), "h2", "L")
		styler.writeParagraph(row.Description, "normal", "L")
		styler.addSpacer(2)
		caption := fmt.Sprintf("Simulated total voltage distribution (HDI %.4f - %.4f V, median %.4f V)",
			row.Min, row.Max, row.Median)
		styler.addImage(imgBytes, fmt.Sprintf("curve_%d", row.Ordinal), imgWidth, imgHeight, caption, "normal")
	}

	return pdf.OutputFileAndClose(filepath)
}
