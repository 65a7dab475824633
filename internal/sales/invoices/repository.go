package invoices

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
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, filters ListFilters) ([]InvoiceWithCustomer, int, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	Replace(ctx context.Context, inv Invoice) error
	Approve(ctx context.Context, id, approverID int64) (*Invoice, error)
	RecordPayment(ctx context.Context, p Payment) (*Invoice, int64, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
	OpenReceivables(ctx context.Context) ([]Receivable, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `i.id, i.number, i.customer_id, i.project_id, i.quotation_id, i.invoice_date,
i.due_date, i.status, i.is_proforma, i.currency, i.subtotal, i.tax_amount, i.discount,
i.total_amount, i.paid_amount, i.notes, i.is_archived, i.created_by, i.approved_by,
i.approved_at, i.created_at, i.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM sales_invoices i WHERE i.id = $1`, invoiceColumns), id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load invoice lines: %w", err)
	}
	inv.Lines = lines
	return inv, nil
}

func (r *repository) loadLines(ctx context.Context, invoiceID int64) ([]InvoiceLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order
		FROM sales_invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_order`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.TaxRate, &l.TaxAmount, &l.LineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]InvoiceWithCustomer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "i.is_archived = FALSE")
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}
	if filters.CustomerID > 0 {
		conditions = append(conditions, fmt.Sprintf("i.customer_id = $%d", argPos))
		args = append(args, filters.CustomerID)
		argPos++
	}
	if filters.ProjectID > 0 {
		conditions = append(conditions, fmt.Sprintf("i.project_id = $%d", argPos))
		args = append(args, filters.ProjectID)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(i.number ILIKE $%d OR c.name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}
	if filters.OverdueOnly {
		conditions = append(conditions,
			"i.status IN ('unpaid', 'partially_paid', 'overdue')", "i.due_date < NOW()")
	}
	if filters.ProformaOnly {
		conditions = append(conditions, "i.is_proforma = TRUE")
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("i.invoice_date >= $%d", argPos))
		args = append(args, *filters.DateFrom)
		argPos++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("i.invoice_date <= $%d", argPos))
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

	from := "FROM sales_invoices i JOIN customers c ON c.id = i.customer_id"

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) %s %s", from, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, c.name AS customer_name %s %s
		ORDER BY i.invoice_date DESC, i.id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, from, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []InvoiceWithCustomer
	for rows.Next() {
		var ic InvoiceWithCustomer
		if err := scanInvoiceInto(rows, &ic.Invoice, &ic.CustomerName); err != nil {
			return nil, 0, err
		}
		out = append(out, ic)
	}
	return out, total, rows.Err()
}

// Create inserts the header and lines. Draft invoices carry no number; the
// sequence is drawn at approval so gaps never appear in issued documents.
func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// proformas get their PI- number immediately; real invoices wait
		// for approval so issued numbering stays gapless
		var number *string
		if inv.IsProforma {
			var seq int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO document_sequences (doc_type, period, seq)
				VALUES ($1, '', 1)
				ON CONFLICT (doc_type, period)
				DO UPDATE SET seq = document_sequences.seq + 1
				RETURNING seq`, "PI").Scan(&seq); err != nil {
				return fmt.Errorf("next proforma number: %w", err)
			}
			n := fmt.Sprintf("PI-%06d", seq)
			number = &n
		}

		if err := tx.QueryRow(ctx, `INSERT INTO sales_invoices
			(number, customer_id, project_id, quotation_id, invoice_date, due_date, status, is_proforma,
			 currency, subtotal, tax_amount, discount, total_amount, paid_amount, notes,
			 is_archived, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, $14, FALSE, $15, NOW(), NOW())
			RETURNING id`,
			number, inv.CustomerID, inv.ProjectID, inv.QuotationID, inv.InvoiceDate, inv.DueDate,
			string(inv.Status), inv.IsProforma, inv.Currency, inv.Subtotal, inv.TaxAmount,
			inv.Discount, inv.TotalAmount, inv.Notes, inv.CreatedBy).Scan(&id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, inv.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Replace(ctx context.Context, inv Invoice) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE sales_invoices SET
			customer_id = $1, project_id = $2, invoice_date = $3, due_date = $4,
			currency = $5, subtotal = $6, tax_amount = $7, discount = $8,
			total_amount = $9, notes = $10, updated_at = NOW()
			WHERE id = $11`,
			inv.CustomerID, inv.ProjectID, inv.InvoiceDate, inv.DueDate, inv.Currency,
			inv.Subtotal, inv.TaxAmount, inv.Discount, inv.TotalAmount, inv.Notes, inv.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sales_invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
			return err
		}
		return insertLines(ctx, tx, inv.ID, inv.Lines)
	})
}

// Approve assigns the number from the shared sequence and opens the
// receivable in a single transaction.
func (r *repository) Approve(ctx context.Context, id, approverID int64) (*Invoice, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "INV").Scan(&seq); err != nil {
			return fmt.Errorf("next invoice number: %w", err)
		}
		number := fmt.Sprintf("INV-%06d", seq)

		tag, err := tx.Exec(ctx, `UPDATE sales_invoices SET
			number = $1, status = $2, approved_by = $3, approved_at = NOW(), updated_at = NOW()
			WHERE id = $4 AND status = $5`,
			number, string(InvoiceStatusUnpaid), approverID, id, string(InvoiceStatusDraft))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: invoice already left draft", shared.ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// RecordPayment runs under serializable isolation: the invoice row is read,
// the paid balance recomputed from the payment rows, and the settle decision
// made against that balance. Two racing payments cannot both pass the
// overpayment check; one aborts and retries at the caller's discretion.
func (r *repository) RecordPayment(ctx context.Context, p Payment) (*Invoice, int64, error) {
	var paymentID int64
	err := db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM sales_invoices i WHERE i.id = $1 FOR UPDATE`, invoiceColumns), p.InvoiceID)
		inv, err := scanInvoice(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		var paid float64
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0) FROM sales_invoice_payments WHERE invoice_id = $1`,
			p.InvoiceID).Scan(&paid); err != nil {
			return fmt.Errorf("recompute paid amount: %w", err)
		}
		inv.PaidAmount = paid

		status, err := settle(inv, p.Amount)
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `INSERT INTO sales_invoice_payments
			(invoice_id, amount, payment_date, method, reference, recorded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id`,
			p.InvoiceID, p.Amount, p.PaymentDate, p.Method, p.Reference, p.RecordedBy).Scan(&paymentID); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE sales_invoices SET
			paid_amount = $1, status = $2, updated_at = NOW() WHERE id = $3`,
			inv.PaidAmount, string(status), p.InvoiceID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	inv, err := r.Get(ctx, p.InvoiceID)
	if err != nil {
		return nil, 0, err
	}
	return inv, paymentID, nil
}

func (r *repository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, amount, payment_date, method, reference, recorded_by, created_at
		FROM sales_invoice_payments
		WHERE invoice_id = $1
		ORDER BY payment_date, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &p.Method,
			&p.Reference, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sales_invoices SET is_archived = $1, updated_at = NOW() WHERE id = $2`,
		archived, id)
	return err
}

func (r *repository) OpenReceivables(ctx context.Context) ([]Receivable, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.number, i.customer_id, c.name, i.currency, i.total_amount,
		       i.paid_amount, i.due_date
		FROM sales_invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.status NOT IN ('paid', 'draft') AND i.is_proforma = FALSE
		ORDER BY i.due_date, i.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var out []Receivable
	for rows.Next() {
		var rec Receivable
		if err := rows.Scan(&rec.InvoiceID, &rec.Number, &rec.CustomerID, &rec.CustomerName,
			&rec.Currency, &rec.TotalAmount, &rec.PaidAmount, &rec.DueDate); err != nil {
			return nil, err
		}
		rec.OutstandingAmount = rec.TotalAmount - rec.PaidAmount
		rec.IsOverdue = now.After(rec.DueDate)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkOverdue flips open invoices past due date to the stored overdue status.
// Run by the nightly scan; the computed overlay stays authoritative either way.
func (r *repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_invoices SET
		status = 'overdue', updated_at = NOW()
		WHERE status IN ('unpaid', 'partially_paid') AND due_date < $1`, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func insertLines(ctx context.Context, tx pgx.Tx, invoiceID int64, lines []InvoiceLine) error {
	for _, l := range lines {
		if _, err := tx.Exec(ctx, `INSERT INTO sales_invoice_lines
			(invoice_id, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			invoiceID, l.Description, l.Quantity, l.UnitPrice, l.TaxRate,
			l.TaxAmount, l.LineTotal, l.LineOrder); err != nil {
			return fmt.Errorf("insert invoice line %d: %w", l.LineOrder, err)
		}
	}
	return nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	if err := scanInvoiceInto(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanInvoiceInto(row pgx.Row, inv *Invoice, extra ...interface{}) error {
	dest := []interface{}{
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.ProjectID, &inv.QuotationID,
		&inv.InvoiceDate, &inv.DueDate, &inv.Status, &inv.IsProforma, &inv.Currency,
		&inv.Subtotal, &inv.TaxAmount, &inv.Discount, &inv.TotalAmount, &inv.PaidAmount,
		&inv.Notes, &inv.IsArchived, &inv.CreatedBy, &inv.ApprovedBy, &inv.ApprovedAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}
