package vessels

import (
	"context"
	"fmt"
	"strings"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Vessel, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Vessel, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid vessel ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, vessel Vessel) (*Vessel, error) {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return nil, err
	}
	if strings.TrimSpace(vessel.Name) == "" {
		return nil, fmt.Errorf("%w: vessel name is required", shared.ErrValidation)
	}
	if !mdshared.IsMember(vessel.VesselType, ValidTypes()) {
		return nil, fmt.Errorf("%w: unknown vessel type %q", shared.ErrValidation, vessel.VesselType)
	}
	id, err := s.repo.Create(ctx, vessel)
	if err != nil {
		return nil, fmt.Errorf("create vessel: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, vessel Vessel) (*Vessel, error) {
	if err := actor.Require(shared.PermMasterDataEdit); err != nil {
		return nil, err
	}
	if strings.TrimSpace(vessel.Name) == "" {
		return nil, fmt.Errorf("%w: vessel name is required", shared.ErrValidation)
	}
	if !mdshared.IsMember(vessel.VesselType, ValidTypes()) {
		return nil, fmt.Errorf("%w: unknown vessel type %q", shared.ErrValidation, vessel.VesselType)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, vessel); err != nil {
		return nil, fmt.Errorf("update vessel: %w", err)
	}
	return s.repo.Get(ctx, id)
}

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
