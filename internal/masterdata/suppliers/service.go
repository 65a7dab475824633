package suppliers

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

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Supplier, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Supplier, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid supplier ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, supplier Supplier) (*Supplier, error) {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return nil, err
	}
	if err := s.validate(supplier); err != nil {
		return nil, err
	}
	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate supplier code: %w", err)
	}
	supplier.Code = code
	supplier.CreatedBy = actor.UserID
	id, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, supplier Supplier) (*Supplier, error) {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid supplier ID", shared.ErrValidation)
	}
	if err := s.validate(supplier); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, supplier); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Archive and Unarchive toggle the soft-delete flag; both are idempotent.
func (s *Service) Archive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}
