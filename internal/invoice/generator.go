// Package invoice renders PDF invoices for successful payments.
package invoice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

type Generator struct {
	store       ports.Store
	companyName string
	currency    string
	logger      *slog.Logger
}

func NewGenerator(store ports.Store, companyName, currency string, logger *slog.Logger) *Generator {
	return &Generator{
		store:       store,
		companyName: companyName,
		currency:    currency,
		logger:      logger,
	}
}

// Render builds the invoice for a payment. Only SUCCESS payments have one.
func (g *Generator) Render(ctx context.Context, paymentID uuid.UUID) ([]byte, error) {
	payment, err := g.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.IsSuccessful() {
		return nil, domain.NewPaymentNotSuccessfulError(payment.TransactionRef, payment.Status)
	}

	booking, err := g.store.Bookings().FindBookingByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	customer, err := g.store.Customers().FindCustomerByID(ctx, booking.CustomerID)
	if err != nil {
		return nil, err
	}

	out, err := g.build(booking, payment, customer)
	if err != nil {
		return nil, fmt.Errorf("render invoice for payment %s: %w", paymentID, err)
	}

	g.logger.Debug("invoice rendered", "payment_id", paymentID, "bytes", len(out))
	return out, nil
}

func (g *Generator) build(b *domain.Booking, p *domain.Payment, c *domain.Customer) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+p.ID.String(), true)
	pdf.SetAuthor(g.companyName, true)
	pdf.SetCreationDate(p.PaidAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, g.companyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Tax invoice", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	rows := [][2]string{
		{"Invoice", p.ID.String()},
		{"Date", p.PaidAt.Format("02 Jan 2006")},
		{"Billed to", c.FullName()},
		{"Email", c.Email},
		{"Booking", fmt.Sprintf("#%d", b.ID)},
		{"Tour", fmt.Sprintf("#%d", b.TourID)},
		{"Travellers", fmt.Sprintf("%d", b.PaxCount)},
		{"Payment reference", p.TransactionRef},
		{"Payment mode", p.Mode},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFillColor(235, 235, 235)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Amount ("+g.currency+")", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	line := func(label, amount string) {
		pdf.CellFormat(130, 8, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, amount, "1", 1, "R", false, 0, "")
	}
	line("Tour package", b.BaseAmount.StringFixed(2))
	line("Taxes", b.TaxAmount.StringFixed(2))

	pdf.SetFont("Helvetica", "B", 10)
	line("Total paid", p.Amount.StringFixed(2))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
