package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/hr/employees"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// EmployeeSource supplies the workforce a run snapshots. Implemented by the
// employees service.
type EmployeeSource interface {
	Active(ctx context.Context) ([]employees.Employee, error)
}

type Service struct {
	repo      Repository
	employees EmployeeSource
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, employees: employees, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Run, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Run, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid payroll run ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// CreateRun snapshots every active employee into a draft run for the given
// period. One run per period; a second attempt conflicts.
func (s *Service) CreateRun(ctx context.Context, actor shared.Actor, period string) (*Run, error) {
	if err := actor.Require(shared.PermPayrollRun); err != nil {
		return nil, err
	}
	if !periodPattern.MatchString(period) {
		return nil, fmt.Errorf("%w: period must be formatted YYYY-MM", shared.ErrValidation)
	}

	workforce, err := s.employees.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active employees: %w", err)
	}
	if len(workforce) == 0 {
		return nil, fmt.Errorf("%w: no active employees to pay", shared.ErrValidation)
	}

	run := Run{
		Period:    period,
		Status:    RunStatusDraft,
		CreatedBy: actor.UserID,
	}
	for _, e := range workforce {
		line := RunLine{
			EmployeeID:   e.ID,
			EmployeeCode: e.Code,
			EmployeeName: e.Name,
			Rank:         e.Rank,
			BaseSalary:   e.BaseSalary,
			Allowances:   e.Allowances,
		}
		recomputeLine(&line)
		run.Lines = append(run.Lines, line)
	}
	recomputeTotals(&run)

	id, err := s.repo.CreateRun(ctx, run)
	if err != nil {
		return nil, err
	}
	s.logger.Info("payroll run created", "run_id", id, "period", period,
		"employees", len(run.Lines), "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

// SetDeduction adjusts one line's deductions while the run is still draft.
// Deductions beyond the line's gross would mean negative pay and are
// rejected.
func (s *Service) SetDeduction(ctx context.Context, actor shared.Actor, runID, lineID int64, amount float64) (*Run, error) {
	if err := actor.Require(shared.PermPayrollRun); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: deduction must not be negative", shared.ErrValidation)
	}
	run, err := s.repo.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != RunStatusDraft {
		return nil, fmt.Errorf("%w: run is %s, deductions can only change on drafts", shared.ErrInvalidState, run.Status)
	}

	var line *RunLine
	for i := range run.Lines {
		if run.Lines[i].ID == lineID {
			line = &run.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, fmt.Errorf("%w: payroll line not found", shared.ErrNotFound)
	}
	if amount > line.Gross {
		return nil, fmt.Errorf("%w: deduction %.2f exceeds gross pay %.2f", shared.ErrConflict, amount, line.Gross)
	}

	line.Deductions = amount
	recomputeLine(line)
	recomputeTotals(run)

	if err := s.repo.UpdateLineAndTotals(ctx, *line, *run); err != nil {
		return nil, fmt.Errorf("update payroll line: %w", err)
	}
	return s.repo.Get(ctx, runID)
}

func (s *Service) Approve(ctx context.Context, actor shared.Actor, id int64) (*Run, error) {
	if err := actor.Require(shared.PermPayrollApprove); err != nil {
		return nil, err
	}
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != RunStatusDraft {
		return nil, fmt.Errorf("%w: run is %s, only drafts can be approved", shared.ErrInvalidState, run.Status)
	}

	now := time.Now()
	if err := s.repo.SetStatus(ctx, id, RunStatusDraft, RunStatusApproved, &actor.UserID, &now, nil); err != nil {
		return nil, err
	}
	s.logger.Info("payroll run approved", "run_id", id, "period", run.Period, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func (s *Service) MarkPaid(ctx context.Context, actor shared.Actor, id int64) (*Run, error) {
	if err := actor.Require(shared.PermFinancePayments); err != nil {
		return nil, err
	}
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != RunStatusApproved {
		return nil, fmt.Errorf("%w: run is %s, only approved runs can be paid", shared.ErrInvalidState, run.Status)
	}

	now := time.Now()
	if err := s.repo.SetStatus(ctx, id, RunStatusApproved, RunStatusPaid, nil, nil, &now); err != nil {
		return nil, err
	}
	s.logger.Info("payroll run paid", "run_id", id, "period", run.Period,
		"total_net", run.TotalNet, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func recomputeLine(line *RunLine) {
	line.Gross = shared.Round2(line.BaseSalary + line.Allowances)
	line.Net = shared.Round2(line.Gross - line.Deductions)
}

func recomputeTotals(run *Run) {
	var gross, deductions, net float64
	for _, l := range run.Lines {
		gross += l.Gross
		deductions += l.Deductions
		net += l.Net
	}
	run.TotalGross = shared.Round2(gross)
	run.TotalDeductions = shared.Round2(deductions)
	run.TotalNet = shared.Round2(net)
}
