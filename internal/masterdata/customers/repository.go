package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	GetByCode(ctx context.Context, code string) (*Customer, error)
	List(ctx context.Context, filters mdshared.ListFilters) ([]Customer, int, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	GenerateCode(ctx context.Context) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

const customerColumns = `id, code, name, email, phone, trn, vat_status, tax_treatment, category,
payment_terms_days, currency, address_line1, address_line2, city, country, notes,
is_archived, archived_at, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns), id)
	return scanCustomer(row)
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Customer, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM customers WHERE code = $1`, customerColumns), code)
	return scanCustomer(row)
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Customer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		customerColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomerRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO customers
(code, name, email, phone, trn, vat_status, tax_treatment, category, payment_terms_days,
 currency, address_line1, address_line2, city, country, notes, is_archived, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, FALSE, $16, NOW(), NOW())
RETURNING id`,
		c.Code, c.Name, c.Email, c.Phone, c.TRN, c.VATStatus, c.TaxTreatment, c.Category,
		c.PaymentTermsDays, c.Currency, c.AddressLine1, c.AddressLine2, c.City, c.Country,
		c.Notes, c.CreatedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE customers SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"name", "email", "phone", "trn", "vat_status", "tax_treatment", "category",
		"payment_terms_days", "currency", "address_line1", "address_line2", "city",
		"country", "notes",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.db.Exec(ctx, `UPDATE customers SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.db.Exec(ctx, `UPDATE customers SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repository) GenerateCode(ctx context.Context) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, '', 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "CUS").Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CUS-%05d", seq), nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	c, err := scanCustomerRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanCustomerRow(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.TRN, &c.VATStatus, &c.TaxTreatment,
		&c.Category, &c.PaymentTermsDays, &c.Currency, &c.AddressLine1, &c.AddressLine2,
		&c.City, &c.Country, &c.Notes, &c.IsArchived, &c.ArchivedAt, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
