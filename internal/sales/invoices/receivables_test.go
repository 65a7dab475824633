package invoices

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestReceivablesSortedOverdueFirst(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	recSvc := NewReceivablesService(repo, nil, slog.Default())

	// one overdue, one current
	overdue := approvedInvoice(t, svc)
	_ = overdue

	current, err := svc.Create(ctx, financeActor(), CreateInvoiceRequest{
		CustomerID:  42,
		InvoiceDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 1, 0),
		Currency:    "AED",
		Lines:       []LineRequest{{Description: "Pilotage", Quantity: 1, UnitPrice: 900, TaxRate: 0}},
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, financeActor(), current.ID)
	require.NoError(t, err)

	recs, err := recSvc.Receivables(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].IsOverdue)
	assert.False(t, recs[1].IsOverdue)
	assert.InDelta(t, 210.0, recs[0].OutstandingAmount, 1e-9)
}

func TestReceivablesExcludeDraftPaidAndProforma(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	recSvc := NewReceivablesService(repo, nil, slog.Default())

	// draft, never listed
	_, err := svc.Create(ctx, financeActor(), createReq())
	require.NoError(t, err)

	// proforma, never listed
	pf := createReq()
	pf.IsProforma = true
	_, err = svc.Create(ctx, financeActor(), pf)
	require.NoError(t, err)

	// paid in full, drops off
	paid := approvedInvoice(t, svc)
	_, err = svc.RecordPayment(ctx, financeActor(), paid.ID, RecordPaymentRequest{
		Amount: 210, PaymentDate: time.Now(), Method: "bank_transfer",
	})
	require.NoError(t, err)

	open := approvedInvoice(t, svc)

	recs, err := recSvc.Receivables(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, open.ID, recs[0].InvoiceID)
}

func TestAgingBuckets(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	recs := []Receivable{
		{Currency: "AED", OutstandingAmount: 100, DueDate: now.AddDate(0, 0, 10)},  // current
		{Currency: "AED", OutstandingAmount: 200, DueDate: now.AddDate(0, 0, -5)},  // 1-30
		{Currency: "AED", OutstandingAmount: 300, DueDate: now.AddDate(0, 0, -45)}, // 31-60
		{Currency: "AED", OutstandingAmount: 400, DueDate: now.AddDate(0, 0, -70)}, // 61-90
		{Currency: "AED", OutstandingAmount: 500, DueDate: now.AddDate(0, 0, -120)},
	}

	report := buildAging(recs, now)
	require.Len(t, report.Buckets, 5)
	assert.InDelta(t, 100.0, report.Buckets[0].Outstanding, 1e-9)
	assert.InDelta(t, 200.0, report.Buckets[1].Outstanding, 1e-9)
	assert.InDelta(t, 300.0, report.Buckets[2].Outstanding, 1e-9)
	assert.InDelta(t, 400.0, report.Buckets[3].Outstanding, 1e-9)
	assert.InDelta(t, 500.0, report.Buckets[4].Outstanding, 1e-9)
	assert.InDelta(t, 1500.0, report.Total, 1e-9)
	assert.Equal(t, 1, report.Buckets[4].Count)
}

func TestAgingCacheRoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	cache := testCache(t)
	recSvc := NewReceivablesService(repo, cache, slog.Default())

	_ = approvedInvoice(t, svc)

	first, err := recSvc.Aging(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 210.0, first.Total, 1e-9)

	// second read comes from cache even after the store changes
	another := approvedInvoice(t, svc)
	_ = another
	cached, err := recSvc.Aging(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 210.0, cached.Total, 1e-9)

	// invalidation forces a rebuild
	recSvc.InvalidateAging(ctx)
	fresh, err := recSvc.Aging(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 420.0, fresh.Total, 1e-9)
}
