package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type memoryRepo struct {
	entries  map[int64]*JournalEntry
	accounts []Account
	mappings map[string]AccountMapping
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		entries:  make(map[int64]*JournalEntry),
		mappings: make(map[string]AccountMapping),
	}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*JournalEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]JournalEntry, int, error) {
	var out []JournalEntry
	for _, e := range m.entries {
		if filters.SourceModule != "" && e.SourceModule != filters.SourceModule {
			continue
		}
		if filters.Status != "" && e.Status != filters.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, entry JournalEntry) (int64, error) {
	for _, e := range m.entries {
		if e.SourceModule == entry.SourceModule && e.SourceID == entry.SourceID {
			return 0, ErrSourceAlreadyLinked
		}
	}
	m.nextID++
	entry.ID = m.nextID
	entry.Number = fmt.Sprintf("JE-%06d", m.nextID)
	entry.CreatedAt = time.Now()
	m.entries[entry.ID] = &entry
	return entry.ID, nil
}

func (m *memoryRepo) SetVoided(_ context.Context, id int64, reason string, at time.Time) error {
	e, ok := m.entries[id]
	if !ok {
		return shared.ErrNotFound
	}
	if e.Status != EntryStatusPosted {
		return fmt.Errorf("%w: journal entry not in posted state", shared.ErrInvalidState)
	}
	e.Status = EntryStatusVoided
	e.VoidReason = &reason
	e.VoidedAt = &at
	return nil
}

func (m *memoryRepo) ListAccounts(_ context.Context) ([]Account, error) {
	return m.accounts, nil
}

func (m *memoryRepo) GetMapping(_ context.Context, module, key string) (*AccountMapping, error) {
	mp, ok := m.mappings[module+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: no account mapping for %s/%s", shared.ErrNotFound, module, key)
	}
	return &mp, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.Default())
}

func financeActor() shared.Actor {
	return shared.NewActor(7, []string{shared.PermFinancePost, shared.PermFinanceView})
}

func balancedInput() PostingInput {
	return PostingInput{
		EntryDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Memo:         "invoice INV-000012 approved",
		SourceModule: "sales",
		SourceID:     uuid.NewSHA1(uuid.Nil, []byte("INV:12")),
		Lines: []PostingLine{
			{AccountID: 1, Debit: 210},
			{AccountID: 2, Credit: 200},
			{AccountID: 3, Credit: 10},
		},
	}
}

func TestPostJournalBalanced(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	entry, err := svc.PostJournal(context.Background(), financeActor(), balancedInput())
	require.NoError(t, err)

	assert.Equal(t, "JE-000001", entry.Number)
	assert.Equal(t, EntryStatusPosted, entry.Status)
	require.Len(t, entry.Lines, 3)
	assert.Equal(t, 1, entry.Lines[0].LineOrder)
	require.NotNil(t, entry.PostedBy)
	assert.Equal(t, int64(7), *entry.PostedBy)
}

func TestPostJournalUnbalanced(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	input := balancedInput()
	input.Lines[2].Credit = 11

	_, err := svc.PostJournal(context.Background(), financeActor(), input)
	assert.ErrorIs(t, err, ErrUnbalanced)
}

func TestPostJournalLineValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	t.Run("too few lines", func(t *testing.T) {
		input := balancedInput()
		input.Lines = input.Lines[:1]
		_, err := svc.PostJournal(context.Background(), financeActor(), input)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("debit and credit on one line", func(t *testing.T) {
		input := balancedInput()
		input.Lines[0].Credit = 210
		input.Lines[1].Credit = 0
		input.Lines[2].Credit = 0
		_, err := svc.PostJournal(context.Background(), financeActor(), input)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("missing source id", func(t *testing.T) {
		input := balancedInput()
		input.SourceID = uuid.Nil
		_, err := svc.PostJournal(context.Background(), financeActor(), input)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestPostJournalRequiresPermission(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	actor := shared.NewActor(5, []string{shared.PermFinanceView})
	_, err := svc.PostJournal(context.Background(), actor, balancedInput())
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestPostJournalReplaySameSource(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.PostJournal(ctx, financeActor(), balancedInput())
	require.NoError(t, err)

	_, err = svc.PostJournal(ctx, financeActor(), balancedInput())
	assert.ErrorIs(t, err, ErrSourceAlreadyLinked)
}

func TestVoidJournal(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	entry, err := svc.PostJournal(ctx, financeActor(), balancedInput())
	require.NoError(t, err)

	voided, err := svc.Void(ctx, financeActor(), entry.ID, "duplicate posting")
	require.NoError(t, err)
	assert.Equal(t, EntryStatusVoided, voided.Status)
	require.NotNil(t, voided.VoidReason)
	assert.Equal(t, "duplicate posting", *voided.VoidReason)
	assert.NotNil(t, voided.VoidedAt)

	_, err = svc.Void(ctx, financeActor(), entry.ID, "again")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestVoidRequiresReason(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	entry, err := svc.PostJournal(ctx, financeActor(), balancedInput())
	require.NoError(t, err)

	_, err = svc.Void(ctx, financeActor(), entry.ID, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
