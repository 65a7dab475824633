package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type ListFilters struct {
	Page         int
	Limit        int
	SourceModule string
	Status       EntryStatus
}

func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	var f ListFilters
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.SourceModule = q.Get("source_module")
	if s := EntryStatus(q.Get("status")); s == EntryStatusPosted || s == EntryStatusVoided {
		f.Status = s
	}
	return f
}

type Repository interface {
	Get(ctx context.Context, id int64) (*JournalEntry, error)
	List(ctx context.Context, filters ListFilters) ([]JournalEntry, int, error)
	Create(ctx context.Context, entry JournalEntry) (int64, error)
	SetVoided(ctx context.Context, id int64, reason string, at time.Time) error
	ListAccounts(ctx context.Context) ([]Account, error)
	GetMapping(ctx context.Context, module, key string) (*AccountMapping, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const entryColumns = `id, number, entry_date, memo, source_module, source_id, status,
posted_by, voided_at, void_reason, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*JournalEntry, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM journal_entries WHERE id = $1`, entryColumns), id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, account_id, debit, credit, line_order
		FROM journal_lines WHERE entry_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return nil, fmt.Errorf("load journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.LineOrder); err != nil {
			return nil, err
		}
		entry.Lines = append(entry.Lines, l)
	}
	return entry, rows.Err()
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]JournalEntry, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filters.SourceModule != "" {
		conditions = append(conditions, fmt.Sprintf("source_module = $%d", argPos))
		args = append(args, filters.SourceModule)
		argPos++
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			where += " AND " + conditions[i]
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM journal_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM journal_entries %s ORDER BY entry_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		entryColumns, where, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *entry)
	}
	return out, total, rows.Err()
}

// Create writes the entry and its lines. A unique index on (source_module,
// source_id) turns a replay into ErrSourceAlreadyLinked.
func (r *repository) Create(ctx context.Context, entry JournalEntry) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "JE").Scan(&seq); err != nil {
			return fmt.Errorf("next journal number: %w", err)
		}
		number := fmt.Sprintf("JE-%06d", seq)

		if err := tx.QueryRow(ctx, `INSERT INTO journal_entries
			(number, entry_date, memo, source_module, source_id, status, posted_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING id`,
			number, entry.EntryDate, entry.Memo, entry.SourceModule, entry.SourceID,
			string(entry.Status), entry.PostedBy).Scan(&id); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrSourceAlreadyLinked
			}
			return err
		}

		for _, l := range entry.Lines {
			if _, err := tx.Exec(ctx, `INSERT INTO journal_lines
				(entry_id, account_id, debit, credit, line_order)
				VALUES ($1, $2, $3, $4, $5)`,
				id, l.AccountID, l.Debit, l.Credit, l.LineOrder); err != nil {
				return fmt.Errorf("insert journal line %d: %w", l.LineOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) SetVoided(ctx context.Context, id int64, reason string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE journal_entries SET
		status = $1, void_reason = $2, voided_at = $3
		WHERE id = $4 AND status = $5`,
		string(EntryStatusVoided), reason, at, id, string(EntryStatusPosted))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry not in posted state", shared.ErrInvalidState)
	}
	return nil
}

func (r *repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, type, is_active FROM ledger_accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.IsActive); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) GetMapping(ctx context.Context, module, key string) (*AccountMapping, error) {
	var m AccountMapping
	err := r.pool.QueryRow(ctx,
		`SELECT module, key, account_id FROM ledger_account_mappings WHERE module = $1 AND key = $2`,
		module, key).Scan(&m.Module, &m.Key, &m.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no account mapping for %s/%s", shared.ErrNotFound, module, key)
		}
		return nil, err
	}
	return &m, nil
}

func scanEntry(row pgx.Row) (*JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(
		&e.ID, &e.Number, &e.EntryDate, &e.Memo, &e.SourceModule, &e.SourceID,
		&e.Status, &e.PostedBy, &e.VoidedAt, &e.VoidReason, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
