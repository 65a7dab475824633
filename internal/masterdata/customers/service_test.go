package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type memoryRepo struct {
	customers map[int64]*Customer
	nextID    int64
	nextCode  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: make(map[int64]*Customer)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memoryRepo) GetByCode(ctx context.Context, code string) (*Customer, error) {
	for _, c := range r.customers {
		if c.Code == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, filters mdshared.ListFilters) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.customers {
		if c.IsArchived && !filters.IncludeArchived {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, c Customer) (int64, error) {
	r.nextID++
	c.ID = r.nextID
	r.customers[c.ID] = &c
	return c.ID, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	c, ok := r.customers[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["category"]; ok {
		c.Category = v.(string)
	}
	return nil
}

func (r *memoryRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	c, ok := r.customers[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.IsArchived = archived
	return nil
}

func (r *memoryRepo) GenerateCode(ctx context.Context) (string, error) {
	r.nextCode++
	return fmt.Sprintf("CUS-%05d", r.nextCode), nil
}

func editor() shared.Actor {
	return shared.NewActor(7, []string{shared.PermMasterDataEdit, shared.PermMasterDataView})
}

func validCreateReq() CreateCustomerRequest {
	return CreateCustomerRequest{
		Name:             "Gulf Marine Services",
		VATStatus:        mdshared.VATRegistered,
		TaxTreatment:     mdshared.TreatmentStandard,
		Category:         mdshared.CategoryShipOwner,
		PaymentTermsDays: 30,
		Currency:         "AED",
		Country:          "AE",
	}
}

func TestCreateCustomer(t *testing.T) {
	svc := NewService(newMemoryRepo())

	customer, err := svc.Create(context.Background(), editor(), validCreateReq())
	require.NoError(t, err)
	assert.Equal(t, "CUS-00001", customer.Code)
	assert.Equal(t, "Gulf Marine Services", customer.Name)
	assert.False(t, customer.IsArchived)
}

func TestCreateCustomerRejectsUnknownEnums(t *testing.T) {
	svc := NewService(newMemoryRepo())

	req := validCreateReq()
	req.VATStatus = "sometimes"
	_, err := svc.Create(context.Background(), editor(), req)
	require.ErrorIs(t, err, shared.ErrValidation)

	req = validCreateReq()
	req.Category = "pirate"
	_, err = svc.Create(context.Background(), editor(), req)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateCustomerRequiresPermission(t *testing.T) {
	svc := NewService(newMemoryRepo())

	viewer := shared.NewActor(9, []string{shared.PermMasterDataView})
	_, err := svc.Create(context.Background(), viewer, validCreateReq())
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestArchiveIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	customer, err := svc.Create(context.Background(), editor(), validCreateReq())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(context.Background(), editor(), customer.ID))
	require.NoError(t, svc.Archive(context.Background(), editor(), customer.ID))

	got, err := svc.Get(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	// Archived records drop out of default listings.
	listed, total, err := svc.List(context.Background(), mdshared.ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Zero(t, total)
}

func TestUnarchiveRestoresVisibility(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	customer, err := svc.Create(context.Background(), editor(), validCreateReq())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(context.Background(), editor(), customer.ID))
	require.NoError(t, svc.Unarchive(context.Background(), editor(), customer.ID))

	got, err := svc.Get(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.False(t, got.IsArchived)
	assert.Equal(t, customer.Name, got.Name)

	listed, total, err := svc.List(context.Background(), mdshared.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, 1, total)
}

func TestArchiveMissingCustomer(t *testing.T) {
	svc := NewService(newMemoryRepo())
	err := svc.Archive(context.Background(), editor(), 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
