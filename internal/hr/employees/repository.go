package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, filters ListFilters) ([]Employee, int, error)
	ListActive(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, employee Employee) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const employeeColumns = `id, code, name, rank, vessel_id, base_salary, allowances, joined_at,
is_archived, archived_at, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Employee, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns), id)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Rank != "" {
		conditions = append(conditions, fmt.Sprintf("rank = $%d", argPos))
		args = append(args, filters.Rank)
		argPos++
	}
	if filters.VesselID > 0 {
		conditions = append(conditions, fmt.Sprintf("vessel_id = $%d", argPos))
		args = append(args, filters.VesselID)
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM employees "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM employees %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		employeeColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *repository) ListActive(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM employees WHERE is_archived = FALSE ORDER BY code`, employeeColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Employee) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "EMP").Scan(&seq); err != nil {
			return fmt.Errorf("next employee code: %w", err)
		}
		code := fmt.Sprintf("EMP-%05d", seq)

		return tx.QueryRow(ctx, `INSERT INTO employees
			(code, name, rank, vessel_id, base_salary, allowances, joined_at,
			 is_archived, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, NOW(), NOW())
			RETURNING id`,
			code, e.Name, e.Rank, e.VesselID, e.BaseSalary, e.Allowances,
			e.JoinedAt, e.CreatedBy).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE employees SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "rank", "vessel_id", "base_salary", "allowances"} {
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

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.pool.Exec(ctx, `UPDATE employees SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE employees SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.Code, &e.Name, &e.Rank, &e.VesselID, &e.BaseSalary, &e.Allowances,
		&e.JoinedAt, &e.IsArchived, &e.ArchivedAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
