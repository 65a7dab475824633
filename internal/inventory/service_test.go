package inventory

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
	items     map[int64]*Item
	movements map[int64][]Movement
	nextID    int64
	nextMvID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items:     make(map[int64]*Item),
		movements: make(map[int64][]Movement),
	}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Item, int, error) {
	var out []Item
	for _, item := range m.items {
		if item.IsArchived && !filters.IncludeArchived {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, item Item) (int64, error) {
	for _, existing := range m.items {
		if existing.SKU == item.SKU {
			return 0, fmt.Errorf("%w: SKU %q already exists", shared.ErrConflict, item.SKU)
		}
	}
	m.nextID++
	item.ID = m.nextID
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	m.items[item.ID] = &item
	return item.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	item, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		item.Name = v.(string)
	}
	if v, ok := updates["unit"]; ok {
		item.Unit = v.(string)
	}
	if v, ok := updates["unit_cost"]; ok {
		item.UnitCost = v.(float64)
	}
	return nil
}

func (m *memoryRepo) Adjust(_ context.Context, mv Movement) (*Item, error) {
	item, ok := m.items[mv.ItemID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if err := applyMovement(item, mv); err != nil {
		return nil, err
	}
	m.nextMvID++
	mv.ID = m.nextMvID
	mv.CreatedAt = time.Now()
	m.movements[mv.ItemID] = append(m.movements[mv.ItemID], mv)
	cp := *item
	return &cp, nil
}

func (m *memoryRepo) Movements(_ context.Context, itemID int64) ([]Movement, error) {
	return append([]Movement(nil), m.movements[itemID]...), nil
}

func (m *memoryRepo) SetArchived(_ context.Context, id int64, archived bool) error {
	item, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	item.IsArchived = archived
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewService(repo, slog.Default()), repo
}

func editorActor() shared.Actor {
	return shared.NewActor(4, []string{shared.PermInventoryView, shared.PermInventoryEdit})
}

func createItem(t *testing.T, svc *Service) *Item {
	t.Helper()
	item, err := svc.Create(context.Background(), editorActor(), CreateItemRequest{
		SKU:      "ROPE-24MM",
		Name:     "Mooring rope 24mm",
		Unit:     "m",
		UnitCost: 12.50,
	})
	require.NoError(t, err)
	return item
}

func TestCreateItem(t *testing.T) {
	svc, _ := newTestService(t)

	item := createItem(t, svc)
	assert.Equal(t, "ROPE-24MM", item.SKU)
	assert.Equal(t, 0.0, item.QtyOnHand)

	_, err := svc.Create(context.Background(), editorActor(), CreateItemRequest{
		SKU: "ROPE-24MM", Name: "duplicate", Unit: "m",
	})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateItemRequiresPermission(t *testing.T) {
	svc, _ := newTestService(t)

	viewer := shared.NewActor(9, []string{shared.PermInventoryView})
	_, err := svc.Create(context.Background(), viewer, CreateItemRequest{
		SKU: "X", Name: "x", Unit: "pc",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestReceiveIncreasesStockAndReAveragesCost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := createItem(t, svc)

	cost := 10.0
	after, err := svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{
		Type: MovementReceive, Qty: 100, UnitCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, after.QtyOnHand)
	assert.Equal(t, 10.0, after.UnitCost)

	cost = 16.0
	after, err = svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{
		Type: MovementReceive, Qty: 50, UnitCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, after.QtyOnHand)
	assert.Equal(t, 12.0, after.UnitCost)
}

func TestIssueDecreasesStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := createItem(t, svc)

	_, err := svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: MovementReceive, Qty: 40})
	require.NoError(t, err)

	after, err := svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: MovementIssue, Qty: 15})
	require.NoError(t, err)
	assert.Equal(t, 25.0, after.QtyOnHand)
}

func TestIssueBelowZeroRejected(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	item := createItem(t, svc)

	_, err := svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: MovementReceive, Qty: 10})
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: MovementIssue, Qty: 11})
	assert.ErrorIs(t, err, shared.ErrConflict)

	// the failed issue leaves no movement row behind
	movements, err := svc.Movements(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	current, _ := repo.Get(ctx, item.ID)
	assert.Equal(t, 10.0, current.QtyOnHand)
}

func TestMovementLogRecordsEachAdjustment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := createItem(t, svc)

	ref := "GRN-7"
	_, err := svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{
		Type: MovementReceive, Qty: 20, Reference: &ref,
	})
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: MovementIssue, Qty: 5})
	require.NoError(t, err)

	movements, err := svc.Movements(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, MovementReceive, movements[0].Type)
	require.NotNil(t, movements[0].Reference)
	assert.Equal(t, "GRN-7", *movements[0].Reference)
	assert.Equal(t, MovementIssue, movements[1].Type)
}

func TestAdjustValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := createItem(t, svc)

	_, err := svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: "transfer", Qty: 5})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Adjust(ctx, editorActor(), item.ID, AdjustStockRequest{Type: MovementReceive, Qty: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestArchiveHidesItemFromDefaultListing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := createItem(t, svc)

	require.NoError(t, svc.Archive(ctx, editorActor(), item.ID))

	visible, _, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, _, err := svc.List(ctx, ListFilters{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
