package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/quotations"
	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type memoryRepo struct {
	nextID     int64
	nextNo     int64
	nextPayID  int64
	items      map[int64]*Invoice
	payments   map[int64][]Payment
	customerBy map[int64]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items:      make(map[int64]*Invoice),
		payments:   make(map[int64][]Payment),
		customerBy: map[int64]string{42: "Gulf Marine Services"},
	}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	cp.Lines = append([]InvoiceLine(nil), inv.Lines...)
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]InvoiceWithCustomer, int, error) {
	var out []InvoiceWithCustomer
	for _, inv := range m.items {
		if !filters.IncludeArchived && inv.IsArchived {
			continue
		}
		if filters.Status != "" && inv.Status != filters.Status {
			continue
		}
		out = append(out, InvoiceWithCustomer{Invoice: *inv, CustomerName: m.customerBy[inv.CustomerID]})
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, inv Invoice) (int64, error) {
	m.nextID++
	inv.ID = m.nextID
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.items[inv.ID] = &inv
	return inv.ID, nil
}

func (m *memoryRepo) Replace(_ context.Context, inv Invoice) error {
	stored, ok := m.items[inv.ID]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Number = stored.Number
	inv.Status = stored.Status
	inv.PaidAmount = stored.PaidAmount
	m.items[inv.ID] = &inv
	return nil
}

func (m *memoryRepo) Approve(_ context.Context, id, approverID int64) (*Invoice, error) {
	inv, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if inv.Status != InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: invoice already left draft", shared.ErrInvalidState)
	}
	m.nextNo++
	number := fmt.Sprintf("INV-%06d", m.nextNo)
	now := time.Now()
	inv.Number = &number
	inv.Status = InvoiceStatusUnpaid
	inv.ApprovedBy = &approverID
	inv.ApprovedAt = &now
	cp := *inv
	return &cp, nil
}

func (m *memoryRepo) RecordPayment(_ context.Context, p Payment) (*Invoice, int64, error) {
	inv, ok := m.items[p.InvoiceID]
	if !ok {
		return nil, 0, shared.ErrNotFound
	}

	var paid float64
	for _, existing := range m.payments[p.InvoiceID] {
		paid += existing.Amount
	}
	work := *inv
	work.PaidAmount = paid

	status, err := settle(&work, p.Amount)
	if err != nil {
		return nil, 0, err
	}

	m.nextPayID++
	p.ID = m.nextPayID
	p.CreatedAt = time.Now()
	m.payments[p.InvoiceID] = append(m.payments[p.InvoiceID], p)

	inv.PaidAmount = work.PaidAmount
	inv.Status = status
	cp := *inv
	return &cp, p.ID, nil
}

func (m *memoryRepo) ListPayments(_ context.Context, invoiceID int64) ([]Payment, error) {
	return append([]Payment(nil), m.payments[invoiceID]...), nil
}

func (m *memoryRepo) SetArchived(_ context.Context, id int64, archived bool) error {
	inv, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.IsArchived = archived
	return nil
}

func (m *memoryRepo) OpenReceivables(_ context.Context) ([]Receivable, error) {
	now := time.Now()
	var out []Receivable
	for _, inv := range m.items {
		if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusDraft || inv.IsProforma {
			continue
		}
		number := ""
		if inv.Number != nil {
			number = *inv.Number
		}
		out = append(out, Receivable{
			InvoiceID:         inv.ID,
			Number:            number,
			CustomerID:        inv.CustomerID,
			CustomerName:      m.customerBy[inv.CustomerID],
			Currency:          inv.Currency,
			TotalAmount:       inv.TotalAmount,
			PaidAmount:        inv.PaidAmount,
			OutstandingAmount: inv.TotalAmount - inv.PaidAmount,
			DueDate:           inv.DueDate,
			IsOverdue:         now.After(inv.DueDate),
		})
	}
	return out, nil
}

func (m *memoryRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	var n int64
	for _, inv := range m.items {
		if (inv.Status == InvoiceStatusUnpaid || inv.Status == InvoiceStatusPartiallyPaid) && inv.DueDate.Before(asOf) {
			inv.Status = InvoiceStatusOverdue
			n++
		}
	}
	return n, nil
}

type captureHook struct {
	events   []InvoiceApprovedEvent
	payments []PaymentRecordedEvent
}

func (c *captureHook) InvoiceApproved(_ context.Context, ev InvoiceApprovedEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *captureHook) PaymentRecorded(_ context.Context, ev PaymentRecordedEvent) error {
	c.payments = append(c.payments, ev)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *captureHook) {
	t.Helper()
	repo := newMemoryRepo()
	hook := &captureHook{}
	return NewService(repo, hook, slog.Default()), repo, hook
}

func financeActor() shared.Actor {
	return shared.NewActor(11, []string{
		shared.PermSalesView, shared.PermSalesEdit, shared.PermSalesApprove,
		shared.PermFinanceView, shared.PermFinancePayments,
	})
}

func createReq() CreateInvoiceRequest {
	return CreateInvoiceRequest{
		CustomerID:  42,
		InvoiceDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:    "AED",
		Lines: []LineRequest{
			{Description: "Crew transfer", Quantity: 2, UnitPrice: 100, TaxRate: 5},
		},
	}
}

func approvedInvoice(t *testing.T, svc *Service) *Invoice {
	t.Helper()
	ctx := context.Background()
	inv, err := svc.Create(ctx, financeActor(), createReq())
	require.NoError(t, err)
	approved, err := svc.Approve(ctx, financeActor(), inv.ID)
	require.NoError(t, err)
	return approved
}

func TestCreateDraftHasNoNumber(t *testing.T) {
	svc, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), financeActor(), createReq())
	require.NoError(t, err)

	assert.Nil(t, inv.Number)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.InDelta(t, 210.0, inv.TotalAmount, 1e-9)
	assert.Zero(t, inv.PaidAmount)
}

func TestCreateRejectsDueBeforeInvoiceDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createReq()
	req.DueDate = req.InvoiceDate.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), financeActor(), req)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestApproveAssignsNumberAndEmitsEvent(t *testing.T) {
	svc, _, hook := newTestService(t)

	inv := approvedInvoice(t, svc)

	require.NotNil(t, inv.Number)
	assert.Equal(t, "INV-000001", *inv.Number)
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)

	require.Len(t, hook.events, 1)
	assert.Equal(t, inv.ID, hook.events[0].InvoiceID)
	assert.InDelta(t, 210.0, hook.events[0].TotalAmount, 1e-9)

	// approving again is an invalid transition
	_, err := svc.Approve(context.Background(), financeActor(), inv.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestApproveProformaRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := createReq()
	req.IsProforma = true
	inv, err := svc.Create(ctx, financeActor(), req)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, financeActor(), inv.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPartialThenFullPayment(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	after, err := svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 100, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartiallyPaid, after.Status)
	assert.InDelta(t, 100.0, after.PaidAmount, 1e-9)
	assert.InDelta(t, 110.0, after.Outstanding(), 1e-9)

	after, err = svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 110, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, after.Status)
	assert.InDelta(t, 210.0, after.PaidAmount, 1e-9)
	assert.Zero(t, after.Outstanding())
}

func TestOverpaymentRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	_, err := svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 300, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	assert.ErrorIs(t, err, shared.ErrConflict)

	// no payment row written, balance untouched
	payments, err := repo.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	after, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Zero(t, after.PaidAmount)
	assert.Equal(t, InvoiceStatusUnpaid, after.Status)
}

func TestPaymentOnFullyPaidInvoiceRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	_, err := svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 210, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 1, PaymentDate: time.Now(), Method: "cash",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPaymentOnDraftRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, financeActor(), createReq())
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 50, PaymentDate: time.Now(), Method: "cash",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPaymentRequiresPositiveAmount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	for _, amount := range []float64{0, -25} {
		_, err := svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
			Amount: amount, PaymentDate: time.Now(), Method: "cash",
		})
		assert.ErrorIs(t, err, shared.ErrValidation, "amount %v", amount)
	}
}

func TestPaymentRequiresFinancePermission(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	salesOnly := shared.NewActor(12, []string{shared.PermSalesEdit, shared.PermSalesApprove})
	_, err := svc.RecordPayment(ctx, salesOnly, inv.ID, RecordPaymentRequest{
		Amount: 50, PaymentDate: time.Now(), Method: "cash",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateFromQuotationCopiesEverything(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quotationID := int64(5)
	id, err := svc.CreateFromQuotation(ctx, financeActor(), quotations.ConvertedQuotation{
		QuotationID: quotationID,
		CustomerID:  42,
		Currency:    "AED",
		Discount:    10,
		Lines: []salesshared.LineInput{
			{Description: "Crew transfer", Quantity: 2, UnitPrice: 100, TaxRate: 5},
			{Description: "Mooring assistance", Quantity: 1, UnitPrice: 500, TaxRate: 5},
		},
	})
	require.NoError(t, err)

	inv, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Nil(t, inv.Number)
	assert.Equal(t, int64(42), inv.CustomerID)
	require.NotNil(t, inv.QuotationID)
	assert.Equal(t, quotationID, *inv.QuotationID)
	require.Len(t, inv.Lines, 2)
	assert.InDelta(t, 700.0, inv.Subtotal, 1e-9)
	assert.InDelta(t, 725.0, inv.TotalAmount, 1e-9)
}

func TestMarkOverdueFlipsOpenInvoices(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	n, err := repo.MarkOverdue(ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusOverdue, after.Status)
	assert.True(t, after.IsOverdue(time.Now().AddDate(1, 0, 0)))
	assert.True(t, after.Status.Payable())
}

type fakeGuard struct {
	reserved map[string]bool
	released []string
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{reserved: make(map[string]bool)}
}

func (g *fakeGuard) Reserve(_ context.Context, module, key string) error {
	k := module + "/" + key
	if g.reserved[k] {
		return shared.ErrIdempotencyConflict
	}
	g.reserved[k] = true
	return nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	g.released = append(g.released, key)
	for k := range g.reserved {
		if k == "sales.payment/"+key {
			delete(g.reserved, k)
		}
	}
	return nil
}

type captureApprovals struct {
	logs []shared.ApprovalLog
}

func (c *captureApprovals) Record(_ context.Context, log shared.ApprovalLog) error {
	c.logs = append(c.logs, log)
	return nil
}

func TestRecordPaymentIdempotencyKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	guard := newFakeGuard()
	svc.WithIdempotency(guard)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	req := RecordPaymentRequest{
		Amount: 100, PaymentDate: time.Now(), Method: "bank_transfer",
		IdempotencyKey: "pay-abc-1",
	}
	after, err := svc.RecordPayment(ctx, financeActor(), inv.ID, req)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, after.PaidAmount, 1e-9)

	// the retried request is refused, not double recorded
	_, err = svc.RecordPayment(ctx, financeActor(), inv.ID, req)
	assert.ErrorIs(t, err, shared.ErrConflict)

	current, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, current.PaidAmount, 1e-9)
}

func TestRecordPaymentReleasesKeyOnFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	guard := newFakeGuard()
	svc.WithIdempotency(guard)
	ctx := context.Background()
	inv := approvedInvoice(t, svc)

	// overpayment fails after the key was reserved, so the key is freed
	_, err := svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 999, PaymentDate: time.Now(), Method: "bank_transfer",
		IdempotencyKey: "pay-retry-1",
	})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Contains(t, guard.released, "pay-retry-1")

	// a corrected retry with the same key succeeds
	after, err := svc.RecordPayment(ctx, financeActor(), inv.ID, RecordPaymentRequest{
		Amount: 210, PaymentDate: time.Now(), Method: "bank_transfer",
		IdempotencyKey: "pay-retry-1",
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, after.Status)
}

func TestApproveRecordsApprovalHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	sink := &captureApprovals{}
	svc.WithApprovalLog(sink)

	inv := approvedInvoice(t, svc)

	require.Len(t, sink.logs, 1)
	assert.Equal(t, "sales.invoice", sink.logs[0].Module)
	assert.Equal(t, inv.ID, sink.logs[0].RefID)
	assert.Equal(t, shared.ApprovalApprove, sink.logs[0].Action)
	assert.Equal(t, int64(11), sink.logs[0].ActorID)
}
