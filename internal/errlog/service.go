package errlog

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

// Record writes one error entry. Recording must never fail the caller's
// request, so persistence errors are logged and swallowed.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if entry.Source == "" {
		entry.Source = "unknown"
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("persist error log entry", "source", entry.Source, slog.Any("error", err))
	}
}

func (s *Service) List(ctx context.Context, actor shared.Actor, filters ListFilters) ([]Entry, int, error) {
	if err := actor.Require(shared.PermErrLogView); err != nil {
		return nil, 0, err
	}
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, actor shared.Actor, id int64) (*Entry, error) {
	if err := actor.Require(shared.PermErrLogView); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid error log ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}
