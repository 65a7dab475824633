package assets

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
	assets     map[int64]*Asset
	agreements map[int64]*Agreement
	nextID     int64
	nextAgID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		assets:     make(map[int64]*Asset),
		agreements: make(map[int64]*Agreement),
	}
}

func (m *memoryRepo) GetAsset(_ context.Context, id int64) (*Asset, error) {
	a, ok := m.assets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryRepo) ListAssets(_ context.Context, filters ListFilters) ([]Asset, int, error) {
	var out []Asset
	for _, a := range m.assets {
		if a.IsArchived && !filters.IncludeArchived {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateAsset(_ context.Context, a Asset) (int64, error) {
	m.nextID++
	a.ID = m.nextID
	a.Code = fmt.Sprintf("AST-%05d", m.nextID)
	a.CreatedAt = time.Now()
	m.assets[a.ID] = &a
	return a.ID, nil
}

func (m *memoryRepo) UpdateAsset(_ context.Context, id int64, updates map[string]interface{}) error {
	a, ok := m.assets[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		a.Name = v.(string)
	}
	if v, ok := updates["daily_rate"]; ok {
		a.DailyRate = v.(float64)
	}
	return nil
}

func (m *memoryRepo) SetAssetArchived(_ context.Context, id int64, archived bool) error {
	a, ok := m.assets[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.IsArchived = archived
	return nil
}

func (m *memoryRepo) HasActiveAgreement(_ context.Context, assetID int64) (bool, error) {
	for _, ag := range m.agreements {
		if ag.AssetID == assetID && ag.Status == AgreementStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) GetAgreement(_ context.Context, id int64) (*Agreement, error) {
	ag, ok := m.agreements[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *ag
	return &cp, nil
}

func (m *memoryRepo) ListAgreements(_ context.Context, filters AgreementFilters) ([]Agreement, int, error) {
	now := time.Now()
	var out []Agreement
	for _, ag := range m.agreements {
		if filters.Status != "" && ag.Status != filters.Status {
			continue
		}
		if filters.AssetID > 0 && ag.AssetID != filters.AssetID {
			continue
		}
		if filters.OverdueOnly && !ag.IsOverdue(now) {
			continue
		}
		out = append(out, *ag)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateAgreement(_ context.Context, ag Agreement) (int64, error) {
	for _, existing := range m.agreements {
		if existing.AssetID == ag.AssetID && existing.Status == AgreementStatusActive {
			return 0, fmt.Errorf("%w: asset is already out on an active agreement", shared.ErrConflict)
		}
	}
	m.nextAgID++
	ag.ID = m.nextAgID
	ag.Number = fmt.Sprintf("RA-%06d", m.nextAgID)
	ag.CreatedAt = time.Now()
	m.agreements[ag.ID] = &ag
	return ag.ID, nil
}

func (m *memoryRepo) CloseAgreement(_ context.Context, id int64, returnedAt time.Time, days int, charge float64) error {
	ag, ok := m.agreements[id]
	if !ok {
		return shared.ErrNotFound
	}
	if ag.Status != AgreementStatusActive {
		return fmt.Errorf("%w: agreement is no longer active", shared.ErrInvalidState)
	}
	ag.Status = AgreementStatusReturned
	ag.ReturnedAt = &returnedAt
	ag.Days = &days
	ag.ChargeAmount = &charge
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewService(repo, slog.Default()), repo
}

func editorActor() shared.Actor {
	return shared.NewActor(6, []string{shared.PermAssetsView, shared.PermAssetsEdit})
}

func createAsset(t *testing.T, svc *Service) *Asset {
	t.Helper()
	asset, err := svc.CreateAsset(context.Background(), editorActor(), CreateAssetRequest{
		Name:      "150T crawler crane",
		DailyRate: 800,
	})
	require.NoError(t, err)
	return asset
}

func rentOut(t *testing.T, svc *Service, assetID int64, start, due time.Time) *Agreement {
	t.Helper()
	ag, err := svc.CreateAgreement(context.Background(), editorActor(), CreateAgreementRequest{
		AssetID:    assetID,
		CustomerID: 30,
		StartDate:  start,
		DueDate:    due,
		TaxRate:    5,
	})
	require.NoError(t, err)
	return ag
}

func TestCreateAgreementCopiesRate(t *testing.T) {
	svc, _ := newTestService(t)
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 7))

	assert.Equal(t, "RA-000001", ag.Number)
	assert.Equal(t, AgreementStatusActive, ag.Status)
	assert.Equal(t, 800.0, ag.DailyRate)

	// repricing the asset does not touch the running agreement
	rate := 950.0
	_, err := svc.UpdateAsset(context.Background(), editorActor(), asset.ID, UpdateAssetRequest{DailyRate: &rate})
	require.NoError(t, err)
	current, err := svc.GetAgreement(context.Background(), ag.ID)
	require.NoError(t, err)
	assert.Equal(t, 800.0, current.DailyRate)
}

func TestOneActiveAgreementPerAsset(t *testing.T) {
	svc, _ := newTestService(t)
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 3))

	_, err := svc.CreateAgreement(context.Background(), editorActor(), CreateAgreementRequest{
		AssetID: asset.ID, CustomerID: 31, StartDate: start, DueDate: start.AddDate(0, 0, 5),
	})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestReturnComputesCharge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 10))

	// 4 full days plus 2 hours bills 5 days: 5 x 800 = 4000, plus 5% tax
	returned, err := svc.Return(ctx, editorActor(), ag.ID, ReturnAssetRequest{
		ReturnedAt: start.Add(4*24*time.Hour + 2*time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, AgreementStatusReturned, returned.Status)
	require.NotNil(t, returned.Days)
	assert.Equal(t, 5, *returned.Days)
	require.NotNil(t, returned.ChargeAmount)
	assert.Equal(t, 4200.0, *returned.ChargeAmount)
}

func TestSameDayReturnBillsOneDay(t *testing.T) {
	svc, _ := newTestService(t)
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 2))

	returned, err := svc.Return(context.Background(), editorActor(), ag.ID, ReturnAssetRequest{
		ReturnedAt: start.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, returned.Days)
	assert.Equal(t, 1, *returned.Days)
	assert.Equal(t, 840.0, *returned.ChargeAmount)
}

func TestReturnTwiceRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 2))

	_, err := svc.Return(ctx, editorActor(), ag.ID, ReturnAssetRequest{ReturnedAt: start.AddDate(0, 0, 1)})
	require.NoError(t, err)

	_, err = svc.Return(ctx, editorActor(), ag.ID, ReturnAssetRequest{ReturnedAt: start.AddDate(0, 0, 2)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestReturnBeforeStartRejected(t *testing.T) {
	svc, _ := newTestService(t)
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 2))

	_, err := svc.Return(context.Background(), editorActor(), ag.ID, ReturnAssetRequest{
		ReturnedAt: start.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOverdueOverlay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, svc)

	start := time.Now().AddDate(0, 0, -10)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 3))

	current, err := svc.GetAgreement(ctx, ag.ID)
	require.NoError(t, err)
	assert.True(t, current.IsOverdue(time.Now()))

	overdue, _, err := svc.ListAgreements(ctx, AgreementFilters{OverdueOnly: true})
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	// returning clears the overlay regardless of how late it came back
	returned, err := svc.Return(ctx, editorActor(), ag.ID, ReturnAssetRequest{ReturnedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, returned.IsOverdue(time.Now()))
}

func TestArchiveAssetWithActiveRentalRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, svc)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ag := rentOut(t, svc, asset.ID, start, start.AddDate(0, 0, 2))

	err := svc.ArchiveAsset(ctx, editorActor(), asset.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Return(ctx, editorActor(), ag.ID, ReturnAssetRequest{ReturnedAt: start.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.NoError(t, svc.ArchiveAsset(ctx, editorActor(), asset.ID))
}
