package pricing

import (
	"testing"

	"github.com/gatepasshq/gatepass-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func billingWithTax(rate float64, inclusive bool) types.BillingConfig {
	cfg := types.DefaultBillingConfig()
	cfg.TaxEnabled = true
	cfg.TaxInclusive = inclusive
	cfg.TaxRate = decimal.NewFromFloat(rate)
	return cfg
}

func TestComputeTaxDisabled(t *testing.T) {
	t.Parallel()
	cfg := types.DefaultBillingConfig()
	breakdown := ComputeTax(TaxBases{TicketCents: 10000, MerchCents: 2500}, cfg)
	if breakdown.Enabled {
		t.Fatal("expected tax disabled")
	}
	if breakdown.TotalCents != 0 {
		t.Fatalf("expected zero tax, got %d", breakdown.TotalCents)
	}
}

func TestComputeTaxExclusive(t *testing.T) {
	t.Parallel()
	breakdown := ComputeTax(TaxBases{TicketCents: 10000, MerchCents: 2000}, billingWithTax(10, false))
	if breakdown.TicketTaxCents != 1000 {
		t.Fatalf("expected ticket tax 1000, got %d", breakdown.TicketTaxCents)
	}
	if breakdown.MerchTaxCents != 200 {
		t.Fatalf("expected merch tax 200, got %d", breakdown.MerchTaxCents)
	}
	if breakdown.TotalCents != 1200 {
		t.Fatalf("expected total tax 1200, got %d", breakdown.TotalCents)
	}
}

func TestComputeTaxInclusiveBackOut(t *testing.T) {
	t.Parallel()
	// NZ GST: a tax-inclusive $100.00 at 15% backs out $13.04.
	breakdown := ComputeTax(TaxBases{TicketCents: 10000}, billingWithTax(15, true))
	if breakdown.TicketTaxCents != 1304 {
		t.Fatalf("expected ticket tax 1304, got %d", breakdown.TicketTaxCents)
	}
	if breakdown.TotalCents != 1304 {
		t.Fatalf("expected total tax 1304, got %d", breakdown.TotalCents)
	}
}

func TestComputeTaxInclusiveRoundTrip(t *testing.T) {
	t.Parallel()
	prices := []int64{1, 99, 100, 10000, 12345, 999999}
	rates := []float64{5, 10, 15, 20}
	for _, price := range prices {
		for _, rate := range rates {
			tax := taxOn(price, decimal.NewFromFloat(rate), true)
			base := price - tax
			if base+tax != price {
				t.Fatalf("price %d rate %v: base %d + tax %d != price", price, rate, base, tax)
			}
			if tax < 0 || base < 0 {
				t.Fatalf("price %d rate %v: negative component base %d tax %d", price, rate, base, tax)
			}
		}
	}
}

func TestComputeTaxZeroRateAndZeroBase(t *testing.T) {
	t.Parallel()
	if got := taxOn(10000, decimal.Zero, true); got != 0 {
		t.Fatalf("expected 0 tax for zero rate, got %d", got)
	}
	if got := taxOn(0, decimal.NewFromInt(15), true); got != 0 {
		t.Fatalf("expected 0 tax for zero base, got %d", got)
	}
	breakdown := ComputeTax(TaxBases{}, billingWithTax(15, false))
	if breakdown.TotalCents != 0 {
		t.Fatalf("expected zero total, got %d", breakdown.TotalCents)
	}
}
