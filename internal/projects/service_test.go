package projects

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
	items  map[int64]*Project
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]*Project)}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Project, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Project, int, error) {
	var out []Project
	for _, p := range m.items {
		if p.IsArchived && !filters.IncludeArchived {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		if filters.CustomerID > 0 && p.CustomerID != filters.CustomerID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, p Project) (int64, error) {
	m.nextID++
	p.ID = m.nextID
	p.Code = fmt.Sprintf("PRJ-%05d", m.nextID)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = &p
	return p.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	p, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["vessel_id"]; ok {
		vid := v.(int64)
		p.VesselID = &vid
	}
	if v, ok := updates["start_date"]; ok {
		p.StartDate = v.(time.Time)
	}
	if v, ok := updates["end_date"]; ok {
		d := v.(time.Time)
		p.EndDate = &d
	}
	if v, ok := updates["budget"]; ok {
		p.Budget = v.(float64)
	}
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, from, to ProjectStatus, endDate *time.Time) error {
	p, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	if p.Status != from {
		return fmt.Errorf("%w: project is no longer %s", shared.ErrInvalidState, from)
	}
	p.Status = to
	if endDate != nil {
		p.EndDate = endDate
	}
	return nil
}

func (m *memoryRepo) SetArchived(_ context.Context, id int64, archived bool) error {
	p, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.IsArchived = archived
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewService(repo, slog.Default()), repo
}

func editorActor() shared.Actor {
	return shared.NewActor(3, []string{shared.PermProjectsView, shared.PermProjectsEdit})
}

func createProject(t *testing.T, svc *Service) *Project {
	t.Helper()
	p, err := svc.Create(context.Background(), editorActor(), CreateProjectRequest{
		Name:       "Hull cleaning MV Orion",
		CustomerID: 11,
		StartDate:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Budget:     15000,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProject(t *testing.T) {
	svc, _ := newTestService(t)

	p := createProject(t, svc)
	assert.Equal(t, "PRJ-00001", p.Code)
	assert.Equal(t, ProjectStatusActive, p.Status)
}

func TestCreateProjectRequiresPermission(t *testing.T) {
	svc, _ := newTestService(t)

	viewer := shared.NewActor(8, []string{shared.PermProjectsView})
	_, err := svc.Create(context.Background(), viewer, CreateProjectRequest{
		Name: "x", CustomerID: 1, StartDate: time.Now(),
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestStatusTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	held, err := svc.SetStatus(ctx, editorActor(), p.ID, ProjectStatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusOnHold, held.Status)

	// on hold cannot complete directly
	_, err = svc.SetStatus(ctx, editorActor(), p.ID, ProjectStatusCompleted)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resumed, err := svc.SetStatus(ctx, editorActor(), p.ID, ProjectStatusActive)
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusActive, resumed.Status)

	done, err := svc.SetStatus(ctx, editorActor(), p.ID, ProjectStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusCompleted, done.Status)
	assert.NotNil(t, done.EndDate)

	_, err = svc.SetStatus(ctx, editorActor(), p.ID, ProjectStatusActive)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUpdateTerminalProjectRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	_, err := svc.SetStatus(ctx, editorActor(), p.ID, ProjectStatusCancelled)
	require.NoError(t, err)

	name := "renamed"
	_, err = svc.Update(ctx, editorActor(), p.ID, UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUpdateEndDateBeforeStartRejected(t *testing.T) {
	svc, _ := newTestService(t)
	p := createProject(t, svc)

	end := p.StartDate.AddDate(0, 0, -1)
	_, err := svc.Update(context.Background(), editorActor(), p.ID, UpdateProjectRequest{EndDate: &end})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListFiltersByStatusAndCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := createProject(t, svc)
	second, err := svc.Create(ctx, editorActor(), CreateProjectRequest{
		Name: "Engine overhaul", CustomerID: 22, StartDate: time.Now(),
	})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, editorActor(), second.ID, ProjectStatusOnHold)
	require.NoError(t, err)

	active, _, err := svc.List(ctx, ListFilters{Status: ProjectStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	byCustomer, _, err := svc.List(ctx, ListFilters{CustomerID: 22})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, second.ID, byCustomer[0].ID)
}

func TestArchiveProject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	require.NoError(t, svc.Archive(ctx, editorActor(), p.ID))

	visible, _, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, svc.Unarchive(ctx, editorActor(), p.ID))
	visible, _, err = svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}
