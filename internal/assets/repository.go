package assets

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
	GetAsset(ctx context.Context, id int64) (*Asset, error)
	ListAssets(ctx context.Context, filters ListFilters) ([]Asset, int, error)
	CreateAsset(ctx context.Context, asset Asset) (int64, error)
	UpdateAsset(ctx context.Context, id int64, updates map[string]interface{}) error
	SetAssetArchived(ctx context.Context, id int64, archived bool) error
	HasActiveAgreement(ctx context.Context, assetID int64) (bool, error)

	GetAgreement(ctx context.Context, id int64) (*Agreement, error)
	ListAgreements(ctx context.Context, filters AgreementFilters) ([]Agreement, int, error)
	CreateAgreement(ctx context.Context, agreement Agreement) (int64, error)
	CloseAgreement(ctx context.Context, id int64, returnedAt time.Time, days int, charge float64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const assetColumns = `id, code, name, category, daily_rate,
is_archived, archived_at, created_by, created_at, updated_at`

const agreementColumns = `id, number, asset_id, customer_id, status, daily_rate, tax_rate,
start_date, due_date, returned_at, days, charge_amount, notes, created_by, created_at, updated_at`

func (r *repository) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM rental_assets WHERE id = $1`, assetColumns), id)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) ListAssets(ctx context.Context, filters ListFilters) ([]Asset, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rental_assets "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM rental_assets %s ORDER BY code ASC LIMIT $%d OFFSET $%d`,
		assetColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func (r *repository) CreateAsset(ctx context.Context, a Asset) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "AST").Scan(&seq); err != nil {
			return fmt.Errorf("next asset code: %w", err)
		}
		code := fmt.Sprintf("AST-%05d", seq)

		return tx.QueryRow(ctx, `INSERT INTO rental_assets
			(code, name, category, daily_rate, is_archived, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, FALSE, $5, NOW(), NOW())
			RETURNING id`,
			code, a.Name, a.Category, a.DailyRate, a.CreatedBy).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateAsset(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE rental_assets SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "category", "daily_rate"} {
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

func (r *repository) SetAssetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.pool.Exec(ctx, `UPDATE rental_assets SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE rental_assets SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repository) HasActiveAgreement(ctx context.Context, assetID int64) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rental_agreements WHERE asset_id = $1 AND status = 'active')`,
		assetID).Scan(&active)
	return active, err
}

func (r *repository) GetAgreement(ctx context.Context, id int64) (*Agreement, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM rental_agreements WHERE id = $1`, agreementColumns), id)
	a, err := scanAgreement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) ListAgreements(ctx context.Context, filters AgreementFilters) ([]Agreement, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}
	if filters.AssetID > 0 {
		conditions = append(conditions, fmt.Sprintf("asset_id = $%d", argPos))
		args = append(args, filters.AssetID)
		argPos++
	}
	if filters.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, filters.CustomerID)
		argPos++
	}
	if filters.OverdueOnly {
		conditions = append(conditions, "status = 'active' AND due_date < NOW()")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rental_agreements "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM rental_agreements %s ORDER BY start_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		agreementColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

// CreateAgreement draws the RA number and inserts the agreement in one
// transaction. The single-active-rental rule is enforced here with a guarded
// existence check inside the same transaction.
func (r *repository) CreateAgreement(ctx context.Context, a Agreement) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var active bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM rental_agreements WHERE asset_id = $1 AND status = 'active' FOR UPDATE)`,
			a.AssetID).Scan(&active); err != nil {
			return err
		}
		if active {
			return fmt.Errorf("%w: asset is already out on an active agreement", shared.ErrConflict)
		}

		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "RA").Scan(&seq); err != nil {
			return fmt.Errorf("next agreement number: %w", err)
		}
		number := fmt.Sprintf("RA-%06d", seq)

		return tx.QueryRow(ctx, `INSERT INTO rental_agreements
			(number, asset_id, customer_id, status, daily_rate, tax_rate, start_date, due_date,
			 notes, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id`,
			number, a.AssetID, a.CustomerID, string(a.Status), a.DailyRate, a.TaxRate,
			a.StartDate, a.DueDate, a.Notes, a.CreatedBy).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) CloseAgreement(ctx context.Context, id int64, returnedAt time.Time, days int, charge float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE rental_agreements SET
		status = $1, returned_at = $2, days = $3, charge_amount = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6`,
		string(AgreementStatusReturned), returnedAt, days, charge, id, string(AgreementStatusActive))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: agreement is no longer active", shared.ErrInvalidState)
	}
	return nil
}

func scanAsset(row pgx.Row) (*Asset, error) {
	var a Asset
	err := row.Scan(
		&a.ID, &a.Code, &a.Name, &a.Category, &a.DailyRate,
		&a.IsArchived, &a.ArchivedAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAgreement(row pgx.Row) (*Agreement, error) {
	var a Agreement
	err := row.Scan(
		&a.ID, &a.Number, &a.AssetID, &a.CustomerID, &a.Status, &a.DailyRate, &a.TaxRate,
		&a.StartDate, &a.DueDate, &a.ReturnedAt, &a.Days, &a.ChargeAmount, &a.Notes,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
