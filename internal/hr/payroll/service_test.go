package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/hr/employees"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type memoryRepo struct {
	runs     map[int64]*Run
	nextID   int64
	nextLine int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{runs: make(map[int64]*Run)}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *run
	cp.Lines = append([]RunLine(nil), run.Lines...)
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Run, int, error) {
	var out []Run
	for _, run := range m.runs {
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		if filters.Period != "" && run.Period != filters.Period {
			continue
		}
		out = append(out, *run)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateRun(_ context.Context, run Run) (int64, error) {
	for _, existing := range m.runs {
		if existing.Period == run.Period {
			return 0, fmt.Errorf("%w: a payroll run for %s already exists", shared.ErrConflict, run.Period)
		}
	}
	m.nextID++
	run.ID = m.nextID
	run.Number = fmt.Sprintf("PAY-%06d", m.nextID)
	run.CreatedAt = time.Now()
	for i := range run.Lines {
		m.nextLine++
		run.Lines[i].ID = m.nextLine
		run.Lines[i].RunID = run.ID
	}
	m.runs[run.ID] = &run
	return run.ID, nil
}

func (m *memoryRepo) UpdateLineAndTotals(_ context.Context, line RunLine, run Run) error {
	stored, ok := m.runs[run.ID]
	if !ok {
		return shared.ErrNotFound
	}
	for i := range stored.Lines {
		if stored.Lines[i].ID == line.ID {
			stored.Lines[i] = line
		}
	}
	stored.TotalGross = run.TotalGross
	stored.TotalDeductions = run.TotalDeductions
	stored.TotalNet = run.TotalNet
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, from, to RunStatus, approvedBy *int64, approvedAt, paidAt *time.Time) error {
	run, ok := m.runs[id]
	if !ok {
		return shared.ErrNotFound
	}
	if run.Status != from {
		return fmt.Errorf("%w: payroll run is no longer %s", shared.ErrInvalidState, from)
	}
	run.Status = to
	if approvedBy != nil {
		run.ApprovedBy = approvedBy
	}
	if approvedAt != nil {
		run.ApprovedAt = approvedAt
	}
	if paidAt != nil {
		run.PaidAt = paidAt
	}
	return nil
}

type fakeWorkforce struct {
	staff []employees.Employee
}

func (f *fakeWorkforce) Active(_ context.Context) ([]employees.Employee, error) {
	return f.staff, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *fakeWorkforce) {
	t.Helper()
	repo := newMemoryRepo()
	workforce := &fakeWorkforce{staff: []employees.Employee{
		{ID: 1, Code: "EMP-00001", Name: "A. Mansour", Rank: "Chief Engineer", BaseSalary: 9000, Allowances: 1500},
		{ID: 2, Code: "EMP-00002", Name: "R. Dsouza", Rank: "Deckhand", BaseSalary: 3000, Allowances: 500},
	}}
	return NewService(repo, workforce, slog.Default()), repo, workforce
}

func hrActor() shared.Actor {
	return shared.NewActor(12, []string{shared.PermPayrollRun, shared.PermPayrollApprove, shared.PermFinancePayments})
}

func TestCreateRunSnapshotsWorkforce(t *testing.T) {
	svc, _, _ := newTestService(t)

	run, err := svc.CreateRun(context.Background(), hrActor(), "2026-05")
	require.NoError(t, err)

	assert.Equal(t, "PAY-000001", run.Number)
	assert.Equal(t, RunStatusDraft, run.Status)
	require.Len(t, run.Lines, 2)
	assert.Equal(t, 10500.0, run.Lines[0].Gross)
	assert.Equal(t, 3500.0, run.Lines[1].Gross)
	assert.Equal(t, 14000.0, run.TotalGross)
	assert.Equal(t, 14000.0, run.TotalNet)
}

func TestCreateRunDuplicatePeriodRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRun(ctx, hrActor(), "2026-05")
	require.NoError(t, err)

	_, err = svc.CreateRun(ctx, hrActor(), "2026-05")
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateRunPeriodFormat(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, period := range []string{"2026-13", "2026-5", "May 2026", ""} {
		_, err := svc.CreateRun(context.Background(), hrActor(), period)
		assert.ErrorIs(t, err, shared.ErrValidation, "period %q", period)
	}
}

func TestCreateRunRequiresPermission(t *testing.T) {
	svc, _, _ := newTestService(t)

	viewer := shared.NewActor(5, []string{shared.PermHRView})
	_, err := svc.CreateRun(context.Background(), viewer, "2026-05")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateRunNoActiveEmployees(t *testing.T) {
	svc, _, workforce := newTestService(t)
	workforce.staff = nil

	_, err := svc.CreateRun(context.Background(), hrActor(), "2026-05")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetDeductionRecomputesNet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	run, err := svc.CreateRun(ctx, hrActor(), "2026-05")
	require.NoError(t, err)

	updated, err := svc.SetDeduction(ctx, hrActor(), run.ID, run.Lines[0].ID, 700)
	require.NoError(t, err)

	assert.Equal(t, 9800.0, updated.Lines[0].Net)
	assert.Equal(t, 700.0, updated.TotalDeductions)
	assert.Equal(t, 13300.0, updated.TotalNet)
	assert.Equal(t, 14000.0, updated.TotalGross)
}

func TestSetDeductionExceedingGrossRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	run, err := svc.CreateRun(ctx, hrActor(), "2026-05")
	require.NoError(t, err)

	_, err = svc.SetDeduction(ctx, hrActor(), run.ID, run.Lines[1].ID, 3600)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestRunLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	run, err := svc.CreateRun(ctx, hrActor(), "2026-05")
	require.NoError(t, err)

	// cannot pay a draft
	_, err = svc.MarkPaid(ctx, hrActor(), run.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	approved, err := svc.Approve(ctx, hrActor(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, int64(12), *approved.ApprovedBy)

	// deductions are frozen after approval
	_, err = svc.SetDeduction(ctx, hrActor(), run.ID, approved.Lines[0].ID, 100)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	paid, err := svc.MarkPaid(ctx, hrActor(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = svc.Approve(ctx, hrActor(), run.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
