package rsvp

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var guestHeaders = []string{"Guest Name", "Attending", "Guests", "Notes", "Responded At"}

// Export renders a guest list and returns the file bytes, MIME type and file name.
func Export(format string, list *GuestList) ([]byte, string, string, error) {
	base := "guests_" + list.InvitationID.String()
	switch strings.ToLower(format) {
	case FormatExcel, "excel":
		b, err := exportExcel(list)
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", base + ".xlsx", err
	case FormatPDF:
		b, err := exportPDF(list)
		return b, "application/pdf", base + ".pdf", err
	}
	return nil, "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func attendingLabel(r RSVP) string {
	if r.IsAttending {
		return "Yes"
	}
	return "No"
}

func notesText(r RSVP) string {
	if r.Notes == nil {
		return ""
	}
	return *r.Notes
}

func exportExcel(list *GuestList) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Guests"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range guestHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, r := range list.Guests {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.GuestName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), attendingLabel(r))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.GuestCount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), notesText(r))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	summaryRow := len(list.Guests) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Attending guests")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow), list.Summary.AttendingGuests)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "Not attending")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow+1), list.Summary.NotAttending)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(list *GuestList) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	title := "Guest List"
	if list.TemplateName != "" {
		title += " - " + list.TemplateName
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Attending guests: %d    Not attending: %d    Responses: %d",
		list.Summary.AttendingGuests, list.Summary.NotAttending, list.Summary.TotalResponses))
	pdf.Ln(10)

	widths := []float64{50, 22, 18, 60, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range guestHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range list.Guests {
		pdf.CellFormat(widths[0], 6, tr(r.GuestName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, attendingLabel(r), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprint(r.GuestCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(notesText(r)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
