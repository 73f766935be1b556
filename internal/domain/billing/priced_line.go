package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
)

// LineSource identifies where a priced line came from
type LineSource string

const (
	LineSourceOrderItem  LineSource = "ORDER_ITEM"  // copied from a sales order item
	LineSourceServiceFee LineSource = "SERVICE_FEE" // shipping, handling or insurance fee
	LineSourceCustom     LineSource = "CUSTOM"      // freeform line added before creation
)

// IsValid checks if the line source is valid
func (s LineSource) IsValid() bool {
	switch s {
	case LineSourceOrderItem, LineSourceServiceFee, LineSourceCustom:
		return true
	}
	return false
}

// StandardTaxRates are the VAT rates offered by the document creation UI.
// The aggregator itself accepts any rate in [0,1]; this set only constrains
// what the interface layer proposes.
var StandardTaxRates = []decimal.Decimal{
	decimal.RequireFromString("0.2"),
	decimal.RequireFromString("0.1"),
	decimal.RequireFromString("0.055"),
	decimal.RequireFromString("0.021"),
	decimal.Zero,
}

// IsStandardTaxRate returns true if the rate is one of the standard VAT rates
func IsStandardTaxRate(rate decimal.Decimal) bool {
	for _, r := range StandardTaxRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// PricedLine is a quantity/unit-price/tax-rate triple contributing to a
// document total. Lines are validated at construction; the aggregator
// assumes non-negative inputs.
type PricedLine struct {
	Source           LineSource      `json:"source"`
	Title            string          `json:"title"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPriceExclTax decimal.Decimal `json:"unit_price_excl_tax"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
}

// NewPricedLine creates a validated priced line
func NewPricedLine(source LineSource, title string, quantity, unitPriceExclTax, taxRate decimal.Decimal) (PricedLine, error) {
	if !source.IsValid() {
		return PricedLine{}, shared.NewDomainError("INVALID_LINE_SOURCE", "Unknown priced line source")
	}
	if title == "" {
		return PricedLine{}, shared.NewDomainError("INVALID_LINE_TITLE", "Line title cannot be empty")
	}
	if quantity.IsNegative() {
		return PricedLine{}, shared.NewDomainError("NEGATIVE_LINE_VALUE", "Line quantity cannot be negative")
	}
	if unitPriceExclTax.IsNegative() {
		return PricedLine{}, shared.NewDomainError("NEGATIVE_LINE_VALUE", "Line unit price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return PricedLine{}, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	return PricedLine{
		Source:           source,
		Title:            title,
		Quantity:         quantity,
		UnitPriceExclTax: unitPriceExclTax,
		TaxRate:          taxRate,
	}, nil
}

// NewServiceFeeLine creates a priced line for a single service fee.
// Fees are modeled as quantity 1 with the fee amount as unit price.
func NewServiceFeeLine(title string, amount valueobject.Money, taxRate decimal.Decimal) (PricedLine, error) {
	return NewPricedLine(LineSourceServiceFee, title, decimal.NewFromInt(1), amount.Amount(), taxRate)
}

// ExtendedExclTax returns quantity * unit price, excl. tax
func (l PricedLine) ExtendedExclTax() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPriceExclTax)
}

// ExtendedTax returns the tax amount for the line at full precision
func (l PricedLine) ExtendedTax() decimal.Decimal {
	return l.ExtendedExclTax().Mul(l.TaxRate)
}

// PricedLines is a slice of PricedLine stored as JSONB
type PricedLines []PricedLine

// Value implements driver.Valuer for GORM to store as JSONB
func (p PricedLines) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (p *PricedLines) Scan(value interface{}) error {
	if value == nil {
		*p = PricedLines{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PricedLines: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PricedLines{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}
