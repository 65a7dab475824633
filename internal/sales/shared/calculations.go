// Package shared holds document arithmetic common to quotations, invoices,
// proforma invoices, credit notes and purchase documents.
package shared

import (
	"errors"
	"fmt"

	appshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// LineInput is one document line as submitted.
type LineInput struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	TaxRate     float64
}

// LineTotals carries the computed per-line amounts.
type LineTotals struct {
	Gross     float64
	TaxAmount float64
	LineTotal float64
}

// DocumentTotals aggregates a whole document.
type DocumentTotals struct {
	Subtotal    float64
	TaxAmount   float64
	Discount    float64
	TotalAmount float64
}

var (
	// ErrNoLines rejects documents without any line item.
	ErrNoLines = fmt.Errorf("%w: at least one line item required", appshared.ErrValidation)
	// ErrExcessDiscount rejects discounts that would drive the total negative.
	ErrExcessDiscount = fmt.Errorf("%w: discount exceeds subtotal plus tax", appshared.ErrValidation)
)

// CalculateLineTotals computes gross, tax and line total for a single line.
// No rounding is applied; display rounding happens at the currency boundary.
func CalculateLineTotals(quantity, unitPrice, taxRate float64) LineTotals {
	gross := quantity * unitPrice
	tax := gross * (taxRate / 100)
	return LineTotals{
		Gross:     gross,
		TaxAmount: tax,
		LineTotal: gross + tax,
	}
}

// ValidateLine checks a single line's numeric constraints.
func ValidateLine(i int, line LineInput) error {
	if line.Quantity <= 0 {
		return fmt.Errorf("%w: line %d: quantity must be positive", appshared.ErrValidation, i+1)
	}
	if line.UnitPrice < 0 {
		return fmt.Errorf("%w: line %d: unit price must not be negative", appshared.ErrValidation, i+1)
	}
	if line.TaxRate < 0 {
		return fmt.Errorf("%w: line %d: tax rate must not be negative", appshared.ErrValidation, i+1)
	}
	return nil
}

// ComputeDocumentTotals derives subtotal, tax and grand total from the given
// lines and header discount. Pure and order-independent: reordering lines
// never changes the result, and recomputing from the same lines is stable.
// A discount larger than subtotal+tax is a validation error, never clamped.
func ComputeDocumentTotals(lines []LineInput, discount float64) (DocumentTotals, error) {
	if len(lines) == 0 {
		return DocumentTotals{}, ErrNoLines
	}
	if discount < 0 {
		return DocumentTotals{}, fmt.Errorf("%w: discount must not be negative", appshared.ErrValidation)
	}

	var subtotal, tax float64
	for i, line := range lines {
		if err := ValidateLine(i, line); err != nil {
			return DocumentTotals{}, err
		}
		lt := CalculateLineTotals(line.Quantity, line.UnitPrice, line.TaxRate)
		subtotal += lt.Gross
		tax += lt.TaxAmount
	}

	total := subtotal - discount + tax
	if total < 0 {
		return DocumentTotals{}, ErrExcessDiscount
	}

	return DocumentTotals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		Discount:    discount,
		TotalAmount: total,
	}, nil
}

// IsValidationError reports whether err belongs to the validation taxonomy.
func IsValidationError(err error) bool {
	return errors.Is(err, appshared.ErrValidation)
}
