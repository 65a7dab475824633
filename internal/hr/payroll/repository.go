package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Run, error)
	List(ctx context.Context, filters ListFilters) ([]Run, int, error)
	CreateRun(ctx context.Context, run Run) (int64, error)
	UpdateLineAndTotals(ctx context.Context, line RunLine, run Run) error
	SetStatus(ctx context.Context, id int64, from, to RunStatus, approvedBy *int64, approvedAt, paidAt *time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const runColumns = `id, number, period, status, total_gross, total_deductions, total_net,
created_by, approved_by, approved_at, paid_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Run, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM payroll_runs WHERE id = $1`, runColumns), id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, run_id, employee_id, employee_code, employee_name, rank,
			base_salary, allowances, gross, deductions, net
		FROM payroll_lines WHERE run_id = $1 ORDER BY employee_code`, id)
	if err != nil {
		return nil, fmt.Errorf("load payroll lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l RunLine
		if err := rows.Scan(&l.ID, &l.RunID, &l.EmployeeID, &l.EmployeeCode, &l.EmployeeName,
			&l.Rank, &l.BaseSalary, &l.Allowances, &l.Gross, &l.Deductions, &l.Net); err != nil {
			return nil, err
		}
		run.Lines = append(run.Lines, l)
	}
	return run, rows.Err()
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Run, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}
	if filters.Period != "" {
		conditions = append(conditions, fmt.Sprintf("period = $%d", argPos))
		args = append(args, filters.Period)
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payroll_runs "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM payroll_runs %s ORDER BY period DESC LIMIT $%d OFFSET $%d`,
		runColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *run)
	}
	return out, total, rows.Err()
}

// CreateRun inserts the run and its snapshot lines in one transaction. A
// unique index on period surfaces a duplicate run as ErrConflict.
func (r *repository) CreateRun(ctx context.Context, run Run) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "PAY").Scan(&seq); err != nil {
			return fmt.Errorf("next payroll number: %w", err)
		}
		number := fmt.Sprintf("PAY-%06d", seq)

		if err := tx.QueryRow(ctx, `INSERT INTO payroll_runs
			(number, period, status, total_gross, total_deductions, total_net,
			 created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id`,
			number, run.Period, string(run.Status), run.TotalGross, run.TotalDeductions,
			run.TotalNet, run.CreatedBy).Scan(&id); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: a payroll run for %s already exists", shared.ErrConflict, run.Period)
			}
			return err
		}

		for _, l := range run.Lines {
			if _, err := tx.Exec(ctx, `INSERT INTO payroll_lines
				(run_id, employee_id, employee_code, employee_name, rank,
				 base_salary, allowances, gross, deductions, net)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				id, l.EmployeeID, l.EmployeeCode, l.EmployeeName, l.Rank,
				l.BaseSalary, l.Allowances, l.Gross, l.Deductions, l.Net); err != nil {
				return fmt.Errorf("insert payroll line for %s: %w", l.EmployeeCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateLineAndTotals(ctx context.Context, line RunLine, run Run) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE payroll_lines SET
			deductions = $1, gross = $2, net = $3 WHERE id = $4 AND run_id = $5`,
			line.Deductions, line.Gross, line.Net, line.ID, run.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE payroll_runs SET
			total_gross = $1, total_deductions = $2, total_net = $3, updated_at = NOW()
			WHERE id = $4`,
			run.TotalGross, run.TotalDeductions, run.TotalNet, run.ID)
		return err
	})
}

func (r *repository) SetStatus(ctx context.Context, id int64, from, to RunStatus, approvedBy *int64, approvedAt, paidAt *time.Time) error {
	query := `UPDATE payroll_runs SET status = $1, updated_at = NOW()`
	args := []interface{}{string(to)}
	argPos := 2

	if approvedBy != nil {
		query += fmt.Sprintf(", approved_by = $%d", argPos)
		args = append(args, *approvedBy)
		argPos++
	}
	if approvedAt != nil {
		query += fmt.Sprintf(", approved_at = $%d", argPos)
		args = append(args, *approvedAt)
		argPos++
	}
	if paidAt != nil {
		query += fmt.Sprintf(", paid_at = $%d", argPos)
		args = append(args, *paidAt)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d AND status = $%d", argPos, argPos+1)
	args = append(args, id, string(from))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payroll run is no longer %s", shared.ErrInvalidState, from)
	}
	return nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.Number, &r.Period, &r.Status, &r.TotalGross, &r.TotalDeductions,
		&r.TotalNet, &r.CreatedBy, &r.ApprovedBy, &r.ApprovedAt, &r.PaidAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
