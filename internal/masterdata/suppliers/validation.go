package suppliers

import (
	"fmt"
	"strings"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	if !mdshared.IsMember(sup.VATStatus, mdshared.ValidVATStatuses()) {
		return fmt.Errorf("%w: unknown vat status %q", shared.ErrValidation, sup.VATStatus)
	}
	if !mdshared.IsMember(sup.TaxTreatment, mdshared.ValidTreatments()) {
		return fmt.Errorf("%w: unknown tax treatment %q", shared.ErrValidation, sup.TaxTreatment)
	}
	if !mdshared.IsMember(sup.Category, mdshared.ValidCategories()) {
		return fmt.Errorf("%w: unknown category %q", shared.ErrValidation, sup.Category)
	}
	if sup.PaymentTermsDays < 0 || sup.PaymentTermsDays > 365 {
		return fmt.Errorf("%w: payment terms must be between 0 and 365 days", shared.ErrValidation)
	}
	if len(sup.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrValidation)
	}
	return nil
}
