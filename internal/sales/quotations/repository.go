package quotations

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
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, filters ListFilters) ([]QuotationWithCustomer, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Replace(ctx context.Context, q Quotation) error
	UpdateStatus(ctx context.Context, q Quotation) error
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const quotationColumns = `q.id, q.number, q.customer_id, q.project_id, q.quote_date, q.valid_until,
q.status, q.currency, q.subtotal, q.tax_amount, q.discount, q.total_amount, q.notes,
q.is_archived, q.created_by, q.approved_by, q.approved_at, q.rejected_by, q.rejected_at,
q.rejection_reason, q.converted_invoice_id, q.created_at, q.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM sales_quotations q WHERE q.id = $1`, quotationColumns), id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quotation lines: %w", err)
	}
	q.Lines = lines
	return q, nil
}

func (r *repository) loadLines(ctx context.Context, quotationID int64) ([]QuotationLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quotation_id, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order
		FROM sales_quotation_lines
		WHERE quotation_id = $1
		ORDER BY line_order`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []QuotationLine
	for rows.Next() {
		var l QuotationLine
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.TaxRate, &l.TaxAmount, &l.LineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]QuotationWithCustomer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "q.is_archived = FALSE")
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}
	if filters.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("q.customer_id = $%d", argPos))
		args = append(args, filters.CustomerID)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(q.number ILIKE $%d OR c.name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date >= $%d", argPos))
		args = append(args, *filters.DateFrom)
		argPos++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date <= $%d", argPos))
		args = append(args, *filters.DateTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	from := "FROM sales_quotations q JOIN customers c ON c.id = q.customer_id"

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) %s %s", from, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, c.name AS customer_name %s %s
		ORDER BY q.quote_date DESC, q.id DESC LIMIT $%d OFFSET $%d`,
		quotationColumns, from, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []QuotationWithCustomer
	for rows.Next() {
		var qc QuotationWithCustomer
		if err := scanQuotationInto(rows, &qc.Quotation, &qc.CustomerName); err != nil {
			return nil, 0, err
		}
		out = append(out, qc)
	}
	return out, total, rows.Err()
}

// Create inserts the header and lines in one transaction, drawing the
// document number from the shared sequence table inside the same tx so a
// rollback never burns a visible gap in committed documents.
func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "QT").Scan(&seq); err != nil {
			return fmt.Errorf("next quotation number: %w", err)
		}
		number := fmt.Sprintf("QT-%06d", seq)

		if err := tx.QueryRow(ctx, `INSERT INTO sales_quotations
			(number, customer_id, project_id, quote_date, valid_until, status, currency,
			 subtotal, tax_amount, discount, total_amount, notes, is_archived, created_by,
			 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, NOW(), NOW())
			RETURNING id`,
			number, q.CustomerID, q.ProjectID, q.QuoteDate, q.ValidUntil, string(q.Status),
			q.Currency, q.Subtotal, q.TaxAmount, q.Discount, q.TotalAmount, q.Notes,
			q.CreatedBy).Scan(&id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, q.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Replace rewrites the header fields and the full line set.
func (r *repository) Replace(ctx context.Context, q Quotation) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE sales_quotations SET
			customer_id = $1, project_id = $2, quote_date = $3, valid_until = $4,
			currency = $5, subtotal = $6, tax_amount = $7, discount = $8,
			total_amount = $9, notes = $10, updated_at = NOW()
			WHERE id = $11`,
			q.CustomerID, q.ProjectID, q.QuoteDate, q.ValidUntil, q.Currency,
			q.Subtotal, q.TaxAmount, q.Discount, q.TotalAmount, q.Notes, q.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sales_quotation_lines WHERE quotation_id = $1`, q.ID); err != nil {
			return err
		}
		return insertLines(ctx, tx, q.ID, q.Lines)
	})
}

func (r *repository) UpdateStatus(ctx context.Context, q Quotation) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_quotations SET
		status = $1, approved_by = $2, approved_at = $3, rejected_by = $4,
		rejected_at = $5, rejection_reason = $6, converted_invoice_id = $7,
		updated_at = NOW()
		WHERE id = $8`,
		string(q.Status), q.ApprovedBy, q.ApprovedAt, q.RejectedBy, q.RejectedAt,
		q.RejectionReason, q.ConvertedID, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sales_quotations SET is_archived = $1, updated_at = NOW() WHERE id = $2`,
		archived, id)
	return err
}

func insertLines(ctx context.Context, tx pgx.Tx, quotationID int64, lines []QuotationLine) error {
	for _, l := range lines {
		if _, err := tx.Exec(ctx, `INSERT INTO sales_quotation_lines
			(quotation_id, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			quotationID, l.Description, l.Quantity, l.UnitPrice, l.TaxRate,
			l.TaxAmount, l.LineTotal, l.LineOrder); err != nil {
			return fmt.Errorf("insert quotation line %d: %w", l.LineOrder, err)
		}
	}
	return nil
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	if err := scanQuotationInto(row, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuotationInto(row pgx.Row, q *Quotation, extra ...interface{}) error {
	dest := []interface{}{
		&q.ID, &q.Number, &q.CustomerID, &q.ProjectID, &q.QuoteDate, &q.ValidUntil,
		&q.Status, &q.Currency, &q.Subtotal, &q.TaxAmount, &q.Discount, &q.TotalAmount,
		&q.Notes, &q.IsArchived, &q.CreatedBy, &q.ApprovedBy, &q.ApprovedAt,
		&q.RejectedBy, &q.RejectedAt, &q.RejectionReason, &q.ConvertedID,
		&q.CreatedAt, &q.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}
