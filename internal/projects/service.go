package projects

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// transitions maps each status to the statuses it may move to. Completed and
// cancelled are terminal.
var transitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusActive:    {ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled},
	ProjectStatusOnHold:    {ProjectStatusActive, ProjectStatusCancelled},
	ProjectStatusCompleted: {},
	ProjectStatusCancelled: {},
}

func canTransition(from, to ProjectStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid project ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateProjectRequest) (*Project, error) {
	if err := actor.Require(shared.PermProjectsEdit); err != nil {
		return nil, err
	}

	project := Project{
		Name:       req.Name,
		CustomerID: req.CustomerID,
		VesselID:   req.VesselID,
		Status:     ProjectStatusActive,
		StartDate:  req.StartDate,
		Budget:     req.Budget,
		Notes:      req.Notes,
		CreatedBy:  actor.UserID,
	}
	id, err := s.repo.Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.logger.Info("project created", "project_id", id, "customer_id", req.CustomerID, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateProjectRequest) (*Project, error) {
	if err := actor.Require(shared.PermProjectsEdit); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: project is %s and can no longer be edited", shared.ErrInvalidState, current.Status)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
		}
		updates["name"] = *req.Name
	}
	if req.VesselID != nil {
		updates["vessel_id"] = *req.VesselID
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		if req.StartDate != nil && req.EndDate.Before(*req.StartDate) {
			return nil, fmt.Errorf("%w: end date cannot precede start date", shared.ErrValidation)
		}
		if req.StartDate == nil && req.EndDate.Before(current.StartDate) {
			return nil, fmt.Errorf("%w: end date cannot precede start date", shared.ErrValidation)
		}
		updates["end_date"] = *req.EndDate
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// SetStatus moves the project along its lifecycle. Completing a project
// stamps the end date if it was never set.
func (s *Service) SetStatus(ctx context.Context, actor shared.Actor, id int64, to ProjectStatus) (*Project, error) {
	if err := actor.Require(shared.PermProjectsEdit); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown project status %q", shared.ErrValidation, to)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: project cannot move from %s to %s", shared.ErrInvalidState, current.Status, to)
	}

	var endDate *time.Time
	if to == ProjectStatusCompleted && current.EndDate == nil {
		now := time.Now()
		endDate = &now
	}
	if err := s.repo.SetStatus(ctx, id, current.Status, to, endDate); err != nil {
		return nil, fmt.Errorf("set project status: %w", err)
	}
	s.logger.Info("project status changed", "project_id", id, "from", current.Status, "to", to, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func (s *Service) Archive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermProjectsEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermProjectsEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}
