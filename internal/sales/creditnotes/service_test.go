package creditnotes

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type memoryRepo struct {
	nextID int64
	nextNo int64
	items  map[int64]*CreditNote
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]*CreditNote)}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*CreditNote, error) {
	cn, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *cn
	return &cp, nil
}

func (m *memoryRepo) ListForInvoice(_ context.Context, invoiceID int64) ([]CreditNote, error) {
	var out []CreditNote
	for _, cn := range m.items {
		if cn.InvoiceID == invoiceID {
			out = append(out, *cn)
		}
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, cn CreditNote) (int64, error) {
	m.nextID++
	cn.ID = m.nextID
	m.items[cn.ID] = &cn
	return cn.ID, nil
}

func (m *memoryRepo) Issue(_ context.Context, id, issuerID int64) (*CreditNote, error) {
	cn, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if cn.Status != CreditNoteStatusDraft {
		return nil, fmt.Errorf("%w: credit note already left draft", shared.ErrInvalidState)
	}
	m.nextNo++
	number := fmt.Sprintf("CN-%06d", m.nextNo)
	now := time.Now()
	cn.Number = &number
	cn.Status = CreditNoteStatusIssued
	cn.IssuedBy = &issuerID
	cn.IssuedAt = &now
	cp := *cn
	return &cp, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status CreditNoteStatus, appliedAt *time.Time) (*CreditNote, error) {
	cn, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cn.Status = status
	if appliedAt != nil {
		cn.AppliedAt = appliedAt
	}
	cp := *cn
	return &cp, nil
}

type fakeBridge struct {
	outstanding float64
	open        bool
	applied     []float64
	applyErr    error
}

func (f *fakeBridge) Snapshot(_ context.Context, invoiceID int64) (InvoiceSnapshot, error) {
	return InvoiceSnapshot{
		InvoiceID:   invoiceID,
		CustomerID:  42,
		Currency:    "AED",
		Outstanding: f.outstanding,
		Open:        f.open,
	}, nil
}

func (f *fakeBridge) ApplyCredit(_ context.Context, _ shared.Actor, _ int64, amount float64, _ string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, amount)
	f.outstanding -= amount
	return nil
}

func newTestService(t *testing.T, bridge *fakeBridge) *Service {
	t.Helper()
	return NewService(newMemoryRepo(), bridge, slog.Default())
}

func actor() shared.Actor {
	return shared.NewActor(3, []string{
		shared.PermSalesEdit, shared.PermSalesApprove, shared.PermFinancePayments,
	})
}

func createReq() CreateCreditNoteRequest {
	return CreateCreditNoteRequest{
		InvoiceID: 9,
		Reason:    "service not rendered",
		Lines: []LineRequest{
			{Description: "Crew transfer", Quantity: 1, UnitPrice: 100, TaxRate: 5},
		},
	}
}

func TestCreateComputesTotalsFromInvoiceSnapshot(t *testing.T) {
	svc := newTestService(t, &fakeBridge{outstanding: 210, open: true})

	cn, err := svc.Create(context.Background(), actor(), createReq())
	require.NoError(t, err)
	assert.Equal(t, CreditNoteStatusDraft, cn.Status)
	assert.Equal(t, "AED", cn.Currency)
	assert.Equal(t, int64(42), cn.CustomerID)
	assert.InDelta(t, 105.0, cn.TotalAmount, 1e-9)
	assert.Nil(t, cn.Number)
}

func TestIssueAssignsNumberWithinOutstanding(t *testing.T) {
	svc := newTestService(t, &fakeBridge{outstanding: 210, open: true})
	ctx := context.Background()

	cn, err := svc.Create(ctx, actor(), createReq())
	require.NoError(t, err)

	issued, err := svc.Issue(ctx, actor(), cn.ID)
	require.NoError(t, err)
	assert.Equal(t, CreditNoteStatusIssued, issued.Status)
	require.NotNil(t, issued.Number)
	assert.Equal(t, "CN-000001", *issued.Number)
}

func TestIssueRejectedWhenExceedingOutstanding(t *testing.T) {
	svc := newTestService(t, &fakeBridge{outstanding: 50, open: true})
	ctx := context.Background()

	cn, err := svc.Create(ctx, actor(), createReq())
	require.NoError(t, err)

	_, err = svc.Issue(ctx, actor(), cn.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestIssueRejectedOnClosedInvoice(t *testing.T) {
	bridge := &fakeBridge{outstanding: 210, open: true}
	svc := newTestService(t, bridge)
	ctx := context.Background()

	cn, err := svc.Create(ctx, actor(), createReq())
	require.NoError(t, err)

	bridge.open = false
	_, err = svc.Issue(ctx, actor(), cn.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestApplySettlesAgainstInvoice(t *testing.T) {
	bridge := &fakeBridge{outstanding: 210, open: true}
	svc := newTestService(t, bridge)
	ctx := context.Background()

	cn, err := svc.Create(ctx, actor(), createReq())
	require.NoError(t, err)
	_, err = svc.Issue(ctx, actor(), cn.ID)
	require.NoError(t, err)

	applied, err := svc.Apply(ctx, actor(), cn.ID)
	require.NoError(t, err)
	assert.Equal(t, CreditNoteStatusApplied, applied.Status)
	require.NotNil(t, applied.AppliedAt)
	require.Len(t, bridge.applied, 1)
	assert.InDelta(t, 105.0, bridge.applied[0], 1e-9)

	// applying twice is an invalid transition
	_, err = svc.Apply(ctx, actor(), cn.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestApplyRequiresIssuedStatus(t *testing.T) {
	svc := newTestService(t, &fakeBridge{outstanding: 210, open: true})
	ctx := context.Background()

	cn, err := svc.Create(ctx, actor(), createReq())
	require.NoError(t, err)

	_, err = svc.Apply(ctx, actor(), cn.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCancelDraftOnly(t *testing.T) {
	svc := newTestService(t, &fakeBridge{outstanding: 210, open: true})
	ctx := context.Background()

	cn, err := svc.Create(ctx, actor(), createReq())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, actor(), cn.ID)
	require.NoError(t, err)
	assert.Equal(t, CreditNoteStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, actor(), cn.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
