package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// RateAmounts maps a canonical tax rate string to the total tax amount
// collected at that rate. Keys are the shortest decimal representation of
// the rate ("0.2", "0.055", "0"), so two lines carry the same bucket only
// when their rates are numerically equal. Stored as JSONB.
type RateAmounts map[string]decimal.Decimal

// RateKey returns the canonical bucket key for a tax rate
func RateKey(rate decimal.Decimal) string {
	return rate.String()
}

// Get returns the tax amount for a rate, zero when the bucket is absent
func (r RateAmounts) Get(rate decimal.Decimal) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	if amount, ok := r[RateKey(rate)]; ok {
		return amount
	}
	return decimal.Zero
}

// Total sums all buckets
func (r RateAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range r {
		total = total.Add(amount)
	}
	return total
}

// Value implements driver.Valuer for GORM to store as JSONB
func (r RateAmounts) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (r *RateAmounts) Scan(value interface{}) error {
	if value == nil {
		*r = RateAmounts{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan RateAmounts: unsupported type")
	}

	if len(bytes) == 0 {
		*r = RateAmounts{}
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// DocumentAmounts is the result of aggregating priced lines: the pre-tax
// total, the tax total and the per-rate tax buckets. All amounts are kept
// at full decimal precision; rounding is a presentation concern.
type DocumentAmounts struct {
	TotalExclTax decimal.Decimal
	TotalTax     decimal.Decimal
	TaxByRate    RateAmounts
	TotalInclTax decimal.Decimal
}

// Aggregate folds priced lines into document amounts. The fold is pure:
// it never mutates its input, an empty or nil slice yields all zeros, and
// grouping is by exact rate equality. Lines are assumed validated.
func Aggregate(lines []PricedLine) DocumentAmounts {
	totalExcl := decimal.Zero
	totalTax := decimal.Zero
	byRate := RateAmounts{}

	for _, line := range lines {
		excl := line.ExtendedExclTax()
		tax := line.ExtendedTax()

		totalExcl = totalExcl.Add(excl)
		totalTax = totalTax.Add(tax)

		key := RateKey(line.TaxRate)
		byRate[key] = byRate[key].Add(tax)
	}

	return DocumentAmounts{
		TotalExclTax: totalExcl,
		TotalTax:     totalTax,
		TaxByRate:    byRate,
		TotalInclTax: totalExcl.Add(totalTax),
	}
}
