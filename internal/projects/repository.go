package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, filters ListFilters) ([]Project, int, error)
	Create(ctx context.Context, project Project) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	SetStatus(ctx context.Context, id int64, from, to ProjectStatus, endDate *time.Time) error
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const projectColumns = `id, code, name, customer_id, vessel_id, status, start_date, end_date,
budget, notes, is_archived, archived_at, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns), id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}
	if filters.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, filters.CustomerID)
		argPos++
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM projects %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		projectColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Project) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "PRJ").Scan(&seq); err != nil {
			return fmt.Errorf("next project code: %w", err)
		}
		code := fmt.Sprintf("PRJ-%05d", seq)

		return tx.QueryRow(ctx, `INSERT INTO projects
			(code, name, customer_id, vessel_id, status, start_date, budget, notes,
			 is_archived, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, NOW(), NOW())
			RETURNING id`,
			code, p.Name, p.CustomerID, p.VesselID, string(p.Status), p.StartDate,
			p.Budget, p.Notes, p.CreatedBy).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE projects SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "vessel_id", "start_date", "end_date", "budget", "notes"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *repository) SetStatus(ctx context.Context, id int64, from, to ProjectStatus, endDate *time.Time) error {
	query := `UPDATE projects SET status = $1, updated_at = NOW()`
	args := []interface{}{string(to)}
	argPos := 2

	if endDate != nil {
		query += fmt.Sprintf(", end_date = $%d", argPos)
		args = append(args, *endDate)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d AND status = $%d", argPos, argPos+1)
	args = append(args, id, string(from))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: project is no longer %s", shared.ErrInvalidState, from)
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.pool.Exec(ctx, `UPDATE projects SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE projects SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.CustomerID, &p.VesselID, &p.Status, &p.StartDate,
		&p.EndDate, &p.Budget, &p.Notes, &p.IsArchived, &p.ArchivedAt, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
