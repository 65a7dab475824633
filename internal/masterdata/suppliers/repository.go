package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Supplier, error)
	List(ctx context.Context, filters mdshared.ListFilters) ([]Supplier, int, error)
	Create(ctx context.Context, supplier Supplier) (int64, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	GenerateCode(ctx context.Context) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const supplierColumns = `id, code, name, email, phone, trn, vat_status, tax_treatment, category,
payment_terms_days, currency, address, country, is_archived, archived_at, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Supplier, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM suppliers WHERE id = $1`, supplierColumns), id)
	var sup Supplier
	err := row.Scan(&sup.ID, &sup.Code, &sup.Name, &sup.Email, &sup.Phone, &sup.TRN,
		&sup.VATStatus, &sup.TaxTreatment, &sup.Category, &sup.PaymentTermsDays,
		&sup.Currency, &sup.Address, &sup.Country, &sup.IsArchived, &sup.ArchivedAt,
		&sup.CreatedBy, &sup.CreatedAt, &sup.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sup, nil
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Supplier, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM suppliers %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM suppliers %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		supplierColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Code, &sup.Name, &sup.Email, &sup.Phone, &sup.TRN,
			&sup.VATStatus, &sup.TaxTreatment, &sup.Category, &sup.PaymentTermsDays,
			&sup.Currency, &sup.Address, &sup.Country, &sup.IsArchived, &sup.ArchivedAt,
			&sup.CreatedBy, &sup.CreatedAt, &sup.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, sup)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, sup Supplier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers
(code, name, email, phone, trn, vat_status, tax_treatment, category, payment_terms_days,
 currency, address, country, is_archived, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, NOW(), NOW())
RETURNING id`,
		sup.Code, sup.Name, sup.Email, sup.Phone, sup.TRN, sup.VATStatus, sup.TaxTreatment,
		sup.Category, sup.PaymentTermsDays, sup.Currency, sup.Address, sup.Country, sup.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, sup Supplier) error {
	_, err := r.pool.Exec(ctx, `UPDATE suppliers SET
name = $1, email = $2, phone = $3, trn = $4, vat_status = $5, tax_treatment = $6,
category = $7, payment_terms_days = $8, currency = $9, address = $10, country = $11,
updated_at = NOW()
WHERE id = $12`,
		sup.Name, sup.Email, sup.Phone, sup.TRN, sup.VATStatus, sup.TaxTreatment,
		sup.Category, sup.PaymentTermsDays, sup.Currency, sup.Address, sup.Country, id)
	return err
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.pool.Exec(ctx, `UPDATE suppliers SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE suppliers SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repository) GenerateCode(ctx context.Context) (string, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, '', 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "SUP").Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SUP-%05d", seq), nil
}
