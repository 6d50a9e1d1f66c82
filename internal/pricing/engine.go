package pricing

import (
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
	"github.com/shopspring/decimal"
)

const bookingFeePercent = 1.0

// Input is everything the aggregation needs. DiscountCents is the
// already-resolved promo plus group discount; resolution itself lives
// in the promos package so Compute stays pure.
type Input struct {
	Items         []LineItem
	DiscountCents int64
	DonationCents int64
	Billing       types.BillingConfig
}

// Totals is the aggregation result. The grand total is the discounted
// subtotal plus processing fee plus exclusive-mode tax; inclusive-mode
// tax and the booking fee are informational lines that do not change
// what the customer pays.
type Totals struct {
	Currency                enums.Currency  `json:"currency"`
	TicketSubtotalCents     int64           `json:"ticket_subtotal_cents"`
	MerchSubtotalCents      int64           `json:"merch_subtotal_cents"`
	SubtotalCents           int64           `json:"subtotal_cents"`
	DiscountCents           int64           `json:"discount_cents"`
	DiscountedSubtotalCents int64           `json:"discounted_subtotal_cents"`
	ProcessingFeePercent    decimal.Decimal `json:"processing_fee_percent"`
	ProcessingFeeCents      int64           `json:"processing_fee_cents"`
	BookingFeeEnabled       bool            `json:"booking_fee_enabled"`
	BookingFeeCents         int64           `json:"booking_fee_cents"`
	DonationCents           int64           `json:"donation_cents"`
	Tax                     TaxBreakdown    `json:"tax"`
	TaxTotalCents           int64           `json:"tax_total_cents"`
	TotalCents              int64           `json:"total_cents"`
	TicketCount             int             `json:"ticket_count"`
	AttendeeCount           int             `json:"attendee_count"`
}

// Compute derives order totals from line items, a resolved discount,
// and the organization's billing configuration. It is deterministic and
// side-effect free; calling it twice with the same input yields the
// same result.
func Compute(in Input) Totals {
	var ticketSubtotal, merchSubtotal int64
	var ticketCount, attendeeCount int

	for _, item := range in.Items {
		if item.Quantity <= 0 {
			continue
		}
		switch item.Category {
		case enums.ItemCategoryMerch:
			merchSubtotal += item.LineTotalCents()
		default:
			ticketSubtotal += item.LineTotalCents()
			ticketCount += item.Quantity
			attendeeCount += item.Attendees()
		}
	}

	subtotal := ticketSubtotal + merchSubtotal

	discount := in.DiscountCents
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	discountedSubtotal := subtotal - discount

	feePercent := in.Billing.ProcessingFeePct
	processingFee := percentOf(discountedSubtotal, feePercent)

	// Apportion the discount proportionally so tax is computed on the
	// post-discount, per-category base. The merchandise base takes the
	// rounding remainder so both bases sum exactly to the discounted
	// subtotal.
	ticketBase := ticketSubtotal
	merchBase := merchSubtotal
	if discount > 0 && subtotal > 0 {
		ratio := decimal.NewFromInt(1).Sub(
			decimal.NewFromInt(discount).Div(decimal.NewFromInt(subtotal)))
		ticketBase = decimal.NewFromInt(ticketSubtotal).Mul(ratio).Round(0).IntPart()
		merchBase = discountedSubtotal - ticketBase
	}

	donation := in.DonationCents
	if donation < 0 {
		donation = 0
	}

	var bookingFee int64
	if in.Billing.BookingFeeEnabled {
		bookingFee = percentOf(discountedSubtotal, decimal.NewFromFloat(bookingFeePercent))
	}

	tax := ComputeTax(TaxBases{
		TicketCents:     ticketBase,
		MerchCents:      merchBase,
		DonationCents:   donation,
		BookingFeeCents: bookingFee,
	}, in.Billing)

	total := discountedSubtotal + processingFee
	if tax.Enabled && !tax.Inclusive {
		total += tax.TotalCents
	}

	return Totals{
		Currency:                in.Billing.Currency,
		TicketSubtotalCents:     ticketSubtotal,
		MerchSubtotalCents:      merchSubtotal,
		SubtotalCents:           subtotal,
		DiscountCents:           discount,
		DiscountedSubtotalCents: discountedSubtotal,
		ProcessingFeePercent:    feePercent,
		ProcessingFeeCents:      processingFee,
		BookingFeeEnabled:       in.Billing.BookingFeeEnabled,
		BookingFeeCents:         bookingFee,
		DonationCents:           donation,
		Tax:                     tax,
		TaxTotalCents:           tax.TotalCents,
		TotalCents:              total,
		TicketCount:             ticketCount,
		AttendeeCount:           attendeeCount,
	}
}

func percentOf(amountCents int64, percent decimal.Decimal) int64 {
	if amountCents <= 0 || percent.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amountCents).Mul(percent).Div(hundred).Round(0).IntPart()
}
