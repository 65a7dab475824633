package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// balanceEpsilon tolerates float drift between summed debits and credits.
const balanceEpsilon = 0.005

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*JournalEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid journal entry ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]JournalEntry, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// PostJournal validates and writes a balanced journal entry. Replaying the
// same SourceID returns ErrSourceAlreadyLinked without writing again.
func (s *Service) PostJournal(ctx context.Context, actor shared.Actor, input PostingInput) (*JournalEntry, error) {
	if err := actor.Require(shared.PermFinancePost); err != nil {
		return nil, err
	}
	if err := validatePosting(input); err != nil {
		return nil, err
	}

	entry := JournalEntry{
		EntryDate:    input.EntryDate,
		Memo:         input.Memo,
		SourceModule: input.SourceModule,
		SourceID:     input.SourceID,
		Status:       EntryStatusPosted,
		PostedBy:     &actor.UserID,
	}
	for i, l := range input.Lines {
		entry.Lines = append(entry.Lines, JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			LineOrder: i + 1,
		})
	}

	id, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.logger.Info("journal posted", "entry_id", id, "source_module", input.SourceModule, "memo", input.Memo)
	return s.repo.Get(ctx, id)
}

// Void reverses a posted entry without deleting it.
func (s *Service) Void(ctx context.Context, actor shared.Actor, id int64, reason string) (*JournalEntry, error) {
	if err := actor.Require(shared.PermFinancePost); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: void reason is required", shared.ErrValidation)
	}
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != EntryStatusPosted {
		return nil, fmt.Errorf("%w: journal entry is %s, only posted entries can be voided",
			shared.ErrInvalidState, entry.Status)
	}

	now := time.Now()
	if err := s.repo.SetVoided(ctx, id, reason, now); err != nil {
		return nil, fmt.Errorf("void journal entry %d: %w", id, err)
	}
	s.logger.Info("journal voided", "entry_id", id, "reason", reason, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func validatePosting(input PostingInput) error {
	if input.SourceID == uuid.Nil {
		return fmt.Errorf("%w: source id required", shared.ErrValidation)
	}
	if input.EntryDate.IsZero() {
		return fmt.Errorf("%w: entry date required", shared.ErrValidation)
	}
	if len(input.Lines) < 2 {
		return fmt.Errorf("%w: a journal entry needs at least two lines", shared.ErrValidation)
	}

	var debits, credits float64
	for i, l := range input.Lines {
		if l.AccountID <= 0 {
			return fmt.Errorf("%w: line %d: account required", shared.ErrValidation, i+1)
		}
		if l.Debit < 0 || l.Credit < 0 {
			return fmt.Errorf("%w: line %d: amounts must not be negative", shared.ErrValidation, i+1)
		}
		if (l.Debit > 0) == (l.Credit > 0) {
			return fmt.Errorf("%w: line %d: exactly one of debit or credit must be set", shared.ErrValidation, i+1)
		}
		debits += l.Debit
		credits += l.Credit
	}

	if math.Abs(debits-credits) > balanceEpsilon {
		return fmt.Errorf("%w: debits %.2f vs credits %.2f", ErrUnbalanced, debits, credits)
	}
	return nil
}
