// Package itinerary renders e-tickets as PDF documents.
package itinerary

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/phpdave11/gofpdf"
)

const timeLayout = "02 Jan 2006 15:04 MST"

type PDFRenderer struct {
	issuer string
	now    func() time.Time
}

func NewPDFRenderer(issuer string) *PDFRenderer {
	return &PDFRenderer{issuer: issuer, now: time.Now}
}

func (r *PDFRenderer) Render(v domain.TicketView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+v.PNR, false)
	pdf.SetCreator(r.issuer, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "PNR: "+v.PNR)
	pdf.Ln(10)

	status := "CONFIRMED"
	if !v.Booked {
		status = "CANCELLED"
	}

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Passenger   : " + v.Name,
		"Email       : " + v.Email,
		"From        : " + v.Origin,
		"To          : " + v.Destination,
		"Departure   : " + v.DepartureTime.Format(timeLayout),
		"Arrival     : " + v.ArrivalTime.Format(timeLayout),
		fmt.Sprintf("Seats       : %d", v.NumberOfSeats),
		"Status      : " + status,
	} {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Issued by %s on %s. Cancellation is not possible within 24 hours of departure.",
		r.issuer, r.now().UTC().Format(timeLayout)), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render itinerary %s: %w", v.PNR, err)
	}
	return buf.Bytes(), nil
}
