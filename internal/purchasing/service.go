package purchasing

import (
	"context"
	"log/slog"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// ApprovalSink records approval history entries. Satisfied by
// shared.ApprovalRecorder.
type ApprovalSink interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

type Service struct {
	repo      Repository
	hook      IntegrationHandler
	approvals ApprovalSink
	logger    *slog.Logger
}

func NewService(repo Repository, hook IntegrationHandler, logger *slog.Logger) *Service {
	if hook == nil {
		hook = NopIntegrationHandler{}
	}
	return &Service{repo: repo, hook: hook, logger: logger}
}

// WithApprovalLog attaches an approval history sink.
func (s *Service) WithApprovalLog(sink ApprovalSink) *Service {
	s.approvals = sink
	return s
}

func (s *Service) recordApproval(ctx context.Context, module string, id int64, actorID int64, action shared.ApprovalAction) {
	if s.approvals == nil {
		return
	}
	if err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module: module, RefID: id, ActorID: actorID, Action: action,
	}); err != nil {
		s.logger.Warn("record approval history failed", "module", module, "ref_id", id, slog.Any("error", err))
	}
}
