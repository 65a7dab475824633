package errlog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 200
)

type ListFilters struct {
	Page   int
	Limit  int
	Source string
}

func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 || f.Limit > maxLimit {
		f.Limit = defaultLimit
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
	f.Source = q.Get("source")
	return f
}

type Repository interface {
	Create(ctx context.Context, entry Entry) error
	Get(ctx context.Context, id int64) (*Entry, error)
	List(ctx context.Context, filters ListFilters) ([]Entry, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO error_log
		(source, message, stack, request_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		e.Source, e.Message, e.Stack, e.RequestID, e.ActorID)
	return err
}

func (r *repository) Get(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, `
		SELECT id, source, message, stack, request_id, actor_id, created_at
		FROM error_log WHERE id = $1`, id).
		Scan(&e.ID, &e.Source, &e.Message, &e.Stack, &e.RequestID, &e.ActorID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Entry, int, error) {
	where := ""
	var args []interface{}
	argPos := 1

	if filters.Source != "" {
		where = fmt.Sprintf("WHERE source = $%d", argPos)
		args = append(args, filters.Source)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM error_log "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, source, message, stack, request_id, actor_id, created_at
		FROM error_log %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Message, &e.Stack, &e.RequestID, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
