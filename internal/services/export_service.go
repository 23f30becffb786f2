package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"phonecalls/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ExportService renders the displayed calls list as a PDF.
type ExportService struct {
	RequestID string
	Now       func() time.Time
}

// CallsListPDF renders view; only a ready view can be exported.
func (s ExportService) CallsListPDF(view CallsListView) ([]byte, string, error) {
	if view.Status != StatusReady {
		return nil, "", fmt.Errorf("calls list is not ready: %s", view.Status)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(PageTitle, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, PageTitle, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	summary := fmt.Sprintf("Page %d - page size %d - filter %s", view.State.ActivePage, view.State.PageSize, view.State.Filter)
	if view.Pagination != nil {
		summary += fmt.Sprintf(" - %d calls in total", view.Pagination.TotalCount)
	}
	pdf.CellFormat(0, 6, summary, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated "+now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if len(view.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "No calls on this page.")
		pdf.Ln(8)
	}

	for _, row := range view.Rows {
		marker := "<-"
		if row.Icon == IconDiagonalUp {
			marker = "->"
		}

		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(10, 7, marker, "", 0, "L", false, 0, "")
		pdf.CellFormat(110, 7, row.Title, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row.Duration, "", 1, "R", false, 0, "")

		pdf.CellFormat(10, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(110, 6, row.Subtitle, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row.Date, "", 1, "R", false, 0, "")

		if row.Notes != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(10, 5, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, row.Notes, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	utils.LogEvent(s.RequestID, "export", "calls_pdf", fmt.Sprintf("page=%d rows=%d", view.State.ActivePage, len(view.Rows)))
	filename := fmt.Sprintf("CALLS_page%d_%s.pdf", view.State.ActivePage, safeFilenamePart(string(view.State.Filter)))
	return buf.Bytes(), filename, nil
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
