package pricing

import (
	"github.com/gatepasshq/gatepass-backend/pkg/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxBases carries the per-category taxable amounts, already
// discount-apportioned by the caller.
type TaxBases struct {
	TicketCents     int64
	MerchCents      int64
	DonationCents   int64
	BookingFeeCents int64
}

// TaxBreakdown is the per-category tax result. In inclusive mode the
// amounts are backed out of the displayed price; in exclusive mode they
// are added on top.
type TaxBreakdown struct {
	Enabled            bool            `json:"enabled"`
	Inclusive          bool            `json:"inclusive"`
	Name               string          `json:"name"`
	Rate               decimal.Decimal `json:"rate"`
	TicketTaxCents     int64           `json:"ticket_tax_cents"`
	MerchTaxCents      int64           `json:"merch_tax_cents"`
	DonationTaxCents   int64           `json:"donation_tax_cents"`
	BookingFeeTaxCents int64           `json:"booking_fee_tax_cents"`
	TotalCents         int64           `json:"total_cents"`
}

// ComputeTax applies the organization's single rate/mode to each
// category independently. Disabled tax, a zero rate, or a zero base all
// yield exactly zero.
func ComputeTax(bases TaxBases, billing types.BillingConfig) TaxBreakdown {
	breakdown := TaxBreakdown{
		Enabled:   billing.TaxEnabled,
		Inclusive: billing.TaxInclusive,
		Name:      billing.TaxName,
		Rate:      billing.TaxRate,
	}
	if !billing.TaxEnabled || billing.TaxRate.IsZero() {
		return breakdown
	}

	breakdown.TicketTaxCents = taxOn(bases.TicketCents, billing.TaxRate, billing.TaxInclusive)
	breakdown.MerchTaxCents = taxOn(bases.MerchCents, billing.TaxRate, billing.TaxInclusive)
	breakdown.DonationTaxCents = taxOn(bases.DonationCents, billing.TaxRate, billing.TaxInclusive)
	breakdown.BookingFeeTaxCents = taxOn(bases.BookingFeeCents, billing.TaxRate, billing.TaxInclusive)
	breakdown.TotalCents = breakdown.TicketTaxCents +
		breakdown.MerchTaxCents +
		breakdown.DonationTaxCents +
		breakdown.BookingFeeTaxCents
	return breakdown
}

func taxOn(amountCents int64, rate decimal.Decimal, inclusive bool) int64 {
	if amountCents <= 0 || rate.IsZero() {
		return 0
	}
	amount := decimal.NewFromInt(amountCents)
	if inclusive {
		divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
		return amount.Sub(amount.Div(divisor)).Round(0).IntPart()
	}
	return amount.Mul(rate).Div(hundred).Round(0).IntPart()
}
