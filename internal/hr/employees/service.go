package employees

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid employee ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateEmployeeRequest) (*Employee, error) {
	if err := actor.Require(shared.PermHREdit); err != nil {
		return nil, err
	}

	employee := Employee{
		Name:       req.Name,
		Rank:       req.Rank,
		VesselID:   req.VesselID,
		BaseSalary: req.BaseSalary,
		Allowances: req.Allowances,
		JoinedAt:   req.JoinedAt,
		CreatedBy:  actor.UserID,
	}
	id, err := s.repo.Create(ctx, employee)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	s.logger.Info("employee created", "employee_id", id, "rank", req.Rank, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateEmployeeRequest) (*Employee, error) {
	if err := actor.Require(shared.PermHREdit); err != nil {
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
	if req.Rank != nil {
		updates["rank"] = *req.Rank
	}
	if req.VesselID != nil {
		updates["vessel_id"] = *req.VesselID
	}
	if req.BaseSalary != nil {
		updates["base_salary"] = *req.BaseSalary
	}
	if req.Allowances != nil {
		updates["allowances"] = *req.Allowances
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update employee: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Archive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermHREdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermHREdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}

// Active returns the non-archived workforce, the population a payroll run
// snapshots.
func (s *Service) Active(ctx context.Context) ([]Employee, error) {
	return s.repo.ListActive(ctx)
}
