package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// BillingConfig carries the per-organization pricing knobs applied at
// checkout. Rates are percentages, not fractions: a 15% tax is 15.
type BillingConfig struct {
	Currency          enums.Currency  `json:"currency"`
	TaxEnabled        bool            `json:"tax_enabled"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxInclusive      bool            `json:"tax_inclusive"`
	TaxName           string          `json:"tax_name"`
	ProcessingFeePct  decimal.Decimal `json:"processing_fee_pct"`
	BookingFeeEnabled bool            `json:"booking_fee_enabled"`
}

// DefaultBillingConfig returns the platform defaults applied when an
// organization has not customized its billing settings.
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		Currency:         enums.CurrencyUSD,
		TaxName:          "Tax",
		ProcessingFeePct: decimal.NewFromInt(3),
	}
}

// Value serializes the config to JSON.
func (b BillingConfig) Value() (driver.Value, error) {
	return json.Marshal(billingConfigDoc{
		Currency:          &b.Currency,
		TaxEnabled:        &b.TaxEnabled,
		TaxRate:           &b.TaxRate,
		TaxInclusive:      &b.TaxInclusive,
		TaxName:           &b.TaxName,
		ProcessingFeePct:  &b.ProcessingFeePct,
		BookingFeeEnabled: &b.BookingFeeEnabled,
	})
}

// Scan decodes JSONB into the config.
func (b *BillingConfig) Scan(value interface{}) error {
	if value == nil {
		*b = DefaultBillingConfig()
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, b)
}

// billingConfigDoc mirrors BillingConfig with optional fields so a partial
// document can be told apart from one that sets a knob to its zero value.
type billingConfigDoc struct {
	Currency          *enums.Currency  `json:"currency"`
	TaxEnabled        *bool            `json:"tax_enabled"`
	TaxRate           *decimal.Decimal `json:"tax_rate"`
	TaxInclusive      *bool            `json:"tax_inclusive"`
	TaxName           *string          `json:"tax_name"`
	ProcessingFeePct  *decimal.Decimal `json:"processing_fee_pct"`
	BookingFeeEnabled *bool            `json:"booking_fee_enabled"`
}

// UnmarshalJSON fills platform defaults for keys the document omits. An org
// that customized only part of its billing still charges the default 3%
// processing fee unless the document sets the fee explicitly.
func (b *BillingConfig) UnmarshalJSON(data []byte) error {
	var doc billingConfigDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := DefaultBillingConfig()
	if doc.Currency != nil {
		out.Currency = *doc.Currency
	}
	if doc.TaxEnabled != nil {
		out.TaxEnabled = *doc.TaxEnabled
	}
	if doc.TaxRate != nil {
		out.TaxRate = *doc.TaxRate
	}
	if doc.TaxInclusive != nil {
		out.TaxInclusive = *doc.TaxInclusive
	}
	if doc.TaxName != nil {
		out.TaxName = *doc.TaxName
	}
	if doc.ProcessingFeePct != nil {
		out.ProcessingFeePct = *doc.ProcessingFeePct
	}
	if doc.BookingFeeEnabled != nil {
		out.BookingFeeEnabled = *doc.BookingFeeEnabled
	}
	*b = out
	return nil
}
