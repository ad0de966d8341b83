// Package ticket renders passenger e-tickets as PDF documents.
package ticket

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// Issuable reports whether a booking has been paid for and may be printed
func Issuable(booking *models.Booking) bool {
	return booking.Status == models.BookingConfirmed || booking.Status == models.BookingCompleted
}

// Render builds the e-ticket for a booking. Returns the PDF bytes and a
// download filename.
func Render(booking *models.Booking, trip *models.Trip) ([]byte, string, error) {
	if booking == nil || trip == nil {
		return nil, "", fmt.Errorf("booking and trip are required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : %s", booking.ID),
		fmt.Sprintf("Status         : %s", booking.Status),
		fmt.Sprintf("Trip           : %s", trip.ID),
		fmt.Sprintf("Departure      : %s", trip.DepartureTime.UTC().Format("2006-01-02 15:04 MST")),
		fmt.Sprintf("Bus            : %s", trip.BusID),
		fmt.Sprintf("Fare           : %.2f", trip.Price),
		fmt.Sprintf("Booked at      : %s", booking.CreatedAt.UTC().Format("2006-01-02 15:04")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Courier", "B", 16)
	pdf.CellFormat(0, 12, booking.QRCode, "1", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This e-ticket is valid for 1 passenger (1 seat). Present the code above when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render ticket: %w", err)
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", booking.QRCode)
	return buf.Bytes(), filename, nil
}
