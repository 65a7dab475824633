package customers

import (
	"context"
	"fmt"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Customer, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid customer ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateCustomerRequest) (*Customer, error) {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return nil, err
	}
	if err := validateClassification(req.VATStatus, req.TaxTreatment, req.Category); err != nil {
		return nil, err
	}

	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate customer code: %w", err)
	}

	customer := Customer{
		Code:             code,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		TRN:              req.TRN,
		VATStatus:        req.VATStatus,
		TaxTreatment:     req.TaxTreatment,
		Category:         req.Category,
		PaymentTermsDays: req.PaymentTermsDays,
		Currency:         req.Currency,
		AddressLine1:     req.AddressLine1,
		AddressLine2:     req.AddressLine2,
		City:             req.City,
		Country:          req.Country,
		Notes:            req.Notes,
		CreatedBy:        actor.UserID,
	}

	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
		}
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.TRN != nil {
		updates["trn"] = *req.TRN
	}
	if req.VATStatus != nil {
		if !mdshared.IsMember(*req.VATStatus, mdshared.ValidVATStatuses()) {
			return nil, fmt.Errorf("%w: unknown vat status %q", shared.ErrValidation, *req.VATStatus)
		}
		updates["vat_status"] = *req.VATStatus
	}
	if req.TaxTreatment != nil {
		if !mdshared.IsMember(*req.TaxTreatment, mdshared.ValidTreatments()) {
			return nil, fmt.Errorf("%w: unknown tax treatment %q", shared.ErrValidation, *req.TaxTreatment)
		}
		updates["tax_treatment"] = *req.TaxTreatment
	}
	if req.Category != nil {
		if !mdshared.IsMember(*req.Category, mdshared.ValidCategories()) {
			return nil, fmt.Errorf("%w: unknown category %q", shared.ErrValidation, *req.Category)
		}
		updates["category"] = *req.Category
	}
	if req.PaymentTermsDays != nil {
		updates["payment_terms_days"] = *req.PaymentTermsDays
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update customer: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// Archive hides the customer from default listings. Archiving an already
// archived record is a no-op success.
func (s *Service) Archive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

// Unarchive restores default listing visibility. Idempotent like Archive.
func (s *Service) Unarchive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}

func validateClassification(vatStatus, treatment, category string) error {
	if !mdshared.IsMember(vatStatus, mdshared.ValidVATStatuses()) {
		return fmt.Errorf("%w: unknown vat status %q", shared.ErrValidation, vatStatus)
	}
	if !mdshared.IsMember(treatment, mdshared.ValidTreatments()) {
		return fmt.Errorf("%w: unknown tax treatment %q", shared.ErrValidation, treatment)
	}
	if !mdshared.IsMember(category, mdshared.ValidCategories()) {
		return fmt.Errorf("%w: unknown category %q", shared.ErrValidation, category)
	}
	return nil
}
