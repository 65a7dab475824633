package purchasing

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
	nextID    int64
	nextSeq   map[string]int64
	nextPayID int64
	requests  map[int64]*PurchaseRequest
	orders    map[int64]*PurchaseOrder
	invoices  map[int64]*PurchaseInvoice
	payments  map[int64][]SupplierPayment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextSeq:  make(map[string]int64),
		requests: make(map[int64]*PurchaseRequest),
		orders:   make(map[int64]*PurchaseOrder),
		invoices: make(map[int64]*PurchaseInvoice),
		payments: make(map[int64][]SupplierPayment),
	}
}

func (m *memoryRepo) number(prefix string) string {
	m.nextSeq[prefix]++
	return fmt.Sprintf("%s-%06d", prefix, m.nextSeq[prefix])
}

func (m *memoryRepo) GetRequest(_ context.Context, id int64) (*PurchaseRequest, error) {
	pr, ok := m.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (m *memoryRepo) ListRequests(_ context.Context, _ ListFilters) ([]PurchaseRequest, int, error) {
	var out []PurchaseRequest
	for _, pr := range m.requests {
		out = append(out, *pr)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateRequest(_ context.Context, pr PurchaseRequest) (int64, error) {
	m.nextID++
	pr.ID = m.nextID
	pr.Number = m.number("PR")
	m.requests[pr.ID] = &pr
	return pr.ID, nil
}

func (m *memoryRepo) UpdateRequestStatus(_ context.Context, pr PurchaseRequest) error {
	stored, ok := m.requests[pr.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Status = pr.Status
	stored.ApprovedBy = pr.ApprovedBy
	stored.OrderID = pr.OrderID
	return nil
}

func (m *memoryRepo) GetOrder(_ context.Context, id int64) (*PurchaseOrder, error) {
	po, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *po
	return &cp, nil
}

func (m *memoryRepo) ListOrders(_ context.Context, _ ListFilters) ([]PurchaseOrder, int, error) {
	var out []PurchaseOrder
	for _, po := range m.orders {
		out = append(out, *po)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateOrder(_ context.Context, po PurchaseOrder) (int64, error) {
	if po.RequestID != nil {
		pr, ok := m.requests[*po.RequestID]
		if !ok {
			return 0, shared.ErrNotFound
		}
		if pr.Status != RequestStatusApproved {
			return 0, fmt.Errorf("%w: purchase request already ordered", shared.ErrInvalidState)
		}
	}
	m.nextID++
	po.ID = m.nextID
	po.Number = m.number("PO")
	m.orders[po.ID] = &po
	if po.RequestID != nil {
		pr := m.requests[*po.RequestID]
		pr.Status = RequestStatusOrdered
		pr.OrderID = &po.ID
	}
	return po.ID, nil
}

func (m *memoryRepo) UpdateOrderStatus(_ context.Context, po PurchaseOrder) error {
	stored, ok := m.orders[po.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Status = po.Status
	stored.ReceivedAt = po.ReceivedAt
	stored.ApprovedBy = po.ApprovedBy
	return nil
}

func (m *memoryRepo) GetAPInvoice(_ context.Context, id int64) (*PurchaseInvoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memoryRepo) ListAPInvoices(_ context.Context, _ ListFilters) ([]PurchaseInvoice, int, error) {
	var out []PurchaseInvoice
	for _, inv := range m.invoices {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateAPInvoice(_ context.Context, inv PurchaseInvoice) (int64, error) {
	m.nextID++
	inv.ID = m.nextID
	inv.Number = m.number("AP")
	m.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (m *memoryRepo) PostAPInvoice(_ context.Context, id, posterID int64) (*PurchaseInvoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if inv.Status != APInvoiceStatusDraft {
		return nil, fmt.Errorf("%w: purchase invoice already left draft", shared.ErrInvalidState)
	}
	now := time.Now()
	inv.Status = APInvoiceStatusPosted
	inv.PostedBy = &posterID
	inv.PostedAt = &now
	cp := *inv
	return &cp, nil
}

func (m *memoryRepo) RecordSupplierPayment(_ context.Context, p SupplierPayment) (*PurchaseInvoice, int64, error) {
	inv, ok := m.invoices[p.InvoiceID]
	if !ok {
		return nil, 0, shared.ErrNotFound
	}

	var paid float64
	for _, existing := range m.payments[p.InvoiceID] {
		paid += existing.Amount
	}
	work := *inv
	work.PaidAmount = paid

	status, err := settleAP(&work, p.Amount)
	if err != nil {
		return nil, 0, err
	}

	m.nextPayID++
	p.ID = m.nextPayID
	m.payments[p.InvoiceID] = append(m.payments[p.InvoiceID], p)
	inv.PaidAmount = work.PaidAmount
	inv.Status = status
	cp := *inv
	return &cp, p.ID, nil
}

func (m *memoryRepo) ListSupplierPayments(_ context.Context, invoiceID int64) ([]SupplierPayment, error) {
	return append([]SupplierPayment(nil), m.payments[invoiceID]...), nil
}

type captureHandler struct {
	posted   []APInvoicePostedEvent
	payments []APPaymentRecordedEvent
}

func (c *captureHandler) APInvoicePosted(_ context.Context, ev APInvoicePostedEvent) error {
	c.posted = append(c.posted, ev)
	return nil
}

func (c *captureHandler) APPaymentRecorded(_ context.Context, ev APPaymentRecordedEvent) error {
	c.payments = append(c.payments, ev)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *captureHandler) {
	t.Helper()
	repo := newMemoryRepo()
	hook := &captureHandler{}
	return NewService(repo, hook, slog.Default()), repo, hook
}

func purchasingActor() shared.Actor {
	return shared.NewActor(5, []string{
		shared.PermPurchasingView, shared.PermPurchasingEdit, shared.PermPurchasingApprove,
		shared.PermFinancePost, shared.PermFinancePayments,
	})
}

func requestReq() CreateRequestRequest {
	return CreateRequestRequest{
		Currency: "AED",
		Purpose:  "engine spares for tug Khalid",
		Lines: []LineRequest{
			{Description: "Fuel injector", Quantity: 4, UnitPrice: 850, TaxRate: 5},
		},
	}
}

func orderReq() CreateOrderRequest {
	return CreateOrderRequest{
		SupplierID: 7,
		Currency:   "AED",
		OrderDate:  time.Now(),
		Lines: []LineRequest{
			{Description: "Fuel injector", Quantity: 4, UnitPrice: 850, TaxRate: 5},
		},
	}
}

func apInvoiceReq() CreateAPInvoiceRequest {
	return CreateAPInvoiceRequest{
		SupplierID:  7,
		Currency:    "AED",
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 1, 0),
		Lines: []LineRequest{
			{Description: "Fuel injector", Quantity: 4, UnitPrice: 850, TaxRate: 5},
		},
	}
}

func TestRequestLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, purchasingActor(), requestReq())
	require.NoError(t, err)
	assert.Equal(t, RequestStatusDraft, pr.Status)
	assert.Equal(t, "PR-000001", pr.Number)
	assert.InDelta(t, 3570.0, pr.TotalAmount, 1e-9)

	pr, err = svc.SubmitRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusSubmitted, pr.Status)

	pr, err = svc.ApproveRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusApproved, pr.Status)

	// approving twice is invalid
	_, err = svc.ApproveRequest(ctx, purchasingActor(), pr.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRejectSubmittedRequest(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, purchasingActor(), requestReq())
	require.NoError(t, err)

	// cannot reject a draft
	_, err = svc.RejectRequest(ctx, purchasingActor(), pr.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.SubmitRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)
	pr, err = svc.RejectRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusRejected, pr.Status)
}

func TestOrderFromApprovedRequest(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, purchasingActor(), requestReq())
	require.NoError(t, err)
	_, err = svc.SubmitRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)

	req := orderReq()
	req.RequestID = &pr.ID
	po, err := svc.CreateOrder(ctx, purchasingActor(), req)
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", po.Number)

	after, err := svc.GetRequest(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusOrdered, after.Status)
	require.NotNil(t, after.OrderID)
	assert.Equal(t, po.ID, *after.OrderID)
}

func TestOrderFromUnapprovedRequestRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, purchasingActor(), requestReq())
	require.NoError(t, err)

	req := orderReq()
	req.RequestID = &pr.ID
	_, err = svc.CreateOrder(ctx, purchasingActor(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrderLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, purchasingActor(), orderReq())
	require.NoError(t, err)

	po, err = svc.ApproveOrder(ctx, purchasingActor(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusApproved, po.Status)

	po, err = svc.MarkOrderReceived(ctx, purchasingActor(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusReceived, po.Status)
	require.NotNil(t, po.ReceivedAt)

	// cancel only works from draft or approved
	_, err = svc.CancelOrder(ctx, purchasingActor(), po.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	po, err = svc.CloseOrder(ctx, purchasingActor(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusClosed, po.Status)
}

func TestCancelDraftOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, purchasingActor(), orderReq())
	require.NoError(t, err)

	po, err = svc.CancelOrder(ctx, purchasingActor(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, po.Status)
}

func TestPostAPInvoiceEmitsEvent(t *testing.T) {
	svc, _, hook := newTestService(t)
	ctx := context.Background()

	inv, err := svc.CreateAPInvoice(ctx, purchasingActor(), apInvoiceReq())
	require.NoError(t, err)
	assert.Equal(t, APInvoiceStatusDraft, inv.Status)

	inv, err = svc.PostAPInvoice(ctx, purchasingActor(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, APInvoiceStatusPosted, inv.Status)

	require.Len(t, hook.posted, 1)
	assert.Equal(t, inv.ID, hook.posted[0].InvoiceID)
	assert.InDelta(t, 3570.0, hook.posted[0].TotalAmount, 1e-9)
}

func TestAPInvoiceAgainstUnreceivedOrderRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, purchasingActor(), orderReq())
	require.NoError(t, err)

	req := apInvoiceReq()
	req.OrderID = &po.ID
	_, err = svc.CreateAPInvoice(ctx, purchasingActor(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestSupplierPaymentReconciliation(t *testing.T) {
	svc, _, hook := newTestService(t)
	ctx := context.Background()

	inv, err := svc.CreateAPInvoice(ctx, purchasingActor(), apInvoiceReq())
	require.NoError(t, err)

	// payment against a draft invoice is rejected
	_, err = svc.RecordSupplierPayment(ctx, purchasingActor(), inv.ID, RecordSupplierPaymentRequest{
		Amount: 100, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.PostAPInvoice(ctx, purchasingActor(), inv.ID)
	require.NoError(t, err)

	after, err := svc.RecordSupplierPayment(ctx, purchasingActor(), inv.ID, RecordSupplierPaymentRequest{
		Amount: 1570, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, APInvoiceStatusPosted, after.Status)
	assert.InDelta(t, 2000.0, after.Outstanding(), 1e-9)

	// overpaying the remainder is rejected
	_, err = svc.RecordSupplierPayment(ctx, purchasingActor(), inv.ID, RecordSupplierPaymentRequest{
		Amount: 2500, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	assert.ErrorIs(t, err, shared.ErrConflict)

	after, err = svc.RecordSupplierPayment(ctx, purchasingActor(), inv.ID, RecordSupplierPaymentRequest{
		Amount: 2000, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, APInvoiceStatusPaid, after.Status)
	assert.Zero(t, after.Outstanding())

	assert.Len(t, hook.payments, 2)
}

type captureApprovals struct {
	logs []shared.ApprovalLog
}

func (c *captureApprovals) Record(_ context.Context, log shared.ApprovalLog) error {
	c.logs = append(c.logs, log)
	return nil
}

func TestApprovalsRecordHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	sink := &captureApprovals{}
	svc.WithApprovalLog(sink)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, purchasingActor(), requestReq())
	require.NoError(t, err)
	_, err = svc.SubmitRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, purchasingActor(), pr.ID)
	require.NoError(t, err)

	po, err := svc.CreateOrder(ctx, purchasingActor(), orderReq())
	require.NoError(t, err)
	_, err = svc.ApproveOrder(ctx, purchasingActor(), po.ID)
	require.NoError(t, err)

	require.Len(t, sink.logs, 2)
	assert.Equal(t, "purchasing.request", sink.logs[0].Module)
	assert.Equal(t, pr.ID, sink.logs[0].RefID)
	assert.Equal(t, "purchasing.order", sink.logs[1].Module)
	assert.Equal(t, po.ID, sink.logs[1].RefID)
	assert.Equal(t, shared.ApprovalApprove, sink.logs[1].Action)
}
