package purchasing

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
	GetRequest(ctx context.Context, id int64) (*PurchaseRequest, error)
	ListRequests(ctx context.Context, filters ListFilters) ([]PurchaseRequest, int, error)
	CreateRequest(ctx context.Context, pr PurchaseRequest) (int64, error)
	UpdateRequestStatus(ctx context.Context, pr PurchaseRequest) error

	GetOrder(ctx context.Context, id int64) (*PurchaseOrder, error)
	ListOrders(ctx context.Context, filters ListFilters) ([]PurchaseOrder, int, error)
	CreateOrder(ctx context.Context, po PurchaseOrder) (int64, error)
	UpdateOrderStatus(ctx context.Context, po PurchaseOrder) error

	GetAPInvoice(ctx context.Context, id int64) (*PurchaseInvoice, error)
	ListAPInvoices(ctx context.Context, filters ListFilters) ([]PurchaseInvoice, int, error)
	CreateAPInvoice(ctx context.Context, inv PurchaseInvoice) (int64, error)
	PostAPInvoice(ctx context.Context, id, posterID int64) (*PurchaseInvoice, error)
	RecordSupplierPayment(ctx context.Context, p SupplierPayment) (*PurchaseInvoice, int64, error)
	ListSupplierPayments(ctx context.Context, invoiceID int64) ([]SupplierPayment, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func nextNumber(ctx context.Context, tx pgx.Tx, docType, prefix string) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, '', 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`, docType).Scan(&seq); err != nil {
		return "", fmt.Errorf("next %s number: %w", docType, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, seq), nil
}

func insertLines(ctx context.Context, tx pgx.Tx, table string, parentCol string, parentID int64, lines []DocumentLine) error {
	for _, l := range lines {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
			(%s, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, table, parentCol),
			parentID, l.Description, l.Quantity, l.UnitPrice, l.TaxRate,
			l.TaxAmount, l.LineTotal, l.LineOrder); err != nil {
			return fmt.Errorf("insert %s line %d: %w", table, l.LineOrder, err)
		}
	}
	return nil
}

func (r *repository) loadLines(ctx context.Context, table, parentCol string, parentID int64) ([]DocumentLine, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, %s, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order
		FROM %s WHERE %s = $1 ORDER BY line_order`, parentCol, table, parentCol), parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []DocumentLine
	for rows.Next() {
		var l DocumentLine
		if err := rows.Scan(&l.ID, &l.ParentID, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.TaxRate, &l.TaxAmount, &l.LineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// --- purchase requests ---

const requestColumns = `id, number, supplier_id, project_id, status, currency, subtotal,
tax_amount, discount, total_amount, purpose, requested_by, approved_by, order_id,
created_at, updated_at`

func (r *repository) GetRequest(ctx context.Context, id int64) (*PurchaseRequest, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM purchase_requests WHERE id = $1`, requestColumns), id)
	pr, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	pr.Lines, err = r.loadLines(ctx, "purchase_request_lines", "request_id", id)
	if err != nil {
		return nil, fmt.Errorf("load purchase request lines: %w", err)
	}
	return pr, nil
}

func (r *repository) ListRequests(ctx context.Context, filters ListFilters) ([]PurchaseRequest, int, error) {
	where, args := purchasingFilters(filters, "supplier_id")
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_requests "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM purchase_requests %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		requestColumns, where, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PurchaseRequest
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *pr)
	}
	return out, total, rows.Err()
}

func (r *repository) CreateRequest(ctx context.Context, pr PurchaseRequest) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := nextNumber(ctx, tx, "PR", "PR")
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `INSERT INTO purchase_requests
			(number, supplier_id, project_id, status, currency, subtotal, tax_amount,
			 discount, total_amount, purpose, requested_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
			RETURNING id`,
			number, pr.SupplierID, pr.ProjectID, string(pr.Status), pr.Currency,
			pr.Subtotal, pr.TaxAmount, pr.Discount, pr.TotalAmount, pr.Purpose,
			pr.RequestedBy).Scan(&id); err != nil {
			return err
		}
		return insertLines(ctx, tx, "purchase_request_lines", "request_id", id, pr.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateRequestStatus(ctx context.Context, pr PurchaseRequest) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_requests SET
		status = $1, approved_by = $2, order_id = $3, updated_at = NOW() WHERE id = $4`,
		string(pr.Status), pr.ApprovedBy, pr.OrderID, pr.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// --- purchase orders ---

const orderColumns = `id, number, supplier_id, request_id, project_id, status, currency,
subtotal, tax_amount, discount, total_amount, order_date, received_at, created_by,
approved_by, created_at, updated_at`

func (r *repository) GetOrder(ctx context.Context, id int64) (*PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM purchase_orders WHERE id = $1`, orderColumns), id)
	po, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	po.Lines, err = r.loadLines(ctx, "purchase_order_lines", "order_id", id)
	if err != nil {
		return nil, fmt.Errorf("load purchase order lines: %w", err)
	}
	return po, nil
}

func (r *repository) ListOrders(ctx context.Context, filters ListFilters) ([]PurchaseOrder, int, error) {
	where, args := purchasingFilters(filters, "supplier_id")
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM purchase_orders %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *po)
	}
	return out, total, rows.Err()
}

// CreateOrder inserts the PO and, when sourced from a request, flips the
// request to ordered in the same transaction.
func (r *repository) CreateOrder(ctx context.Context, po PurchaseOrder) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := nextNumber(ctx, tx, "PO", "PO")
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `INSERT INTO purchase_orders
			(number, supplier_id, request_id, project_id, status, currency, subtotal,
			 tax_amount, discount, total_amount, order_date, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING id`,
			number, po.SupplierID, po.RequestID, po.ProjectID, string(po.Status),
			po.Currency, po.Subtotal, po.TaxAmount, po.Discount, po.TotalAmount,
			po.OrderDate, po.CreatedBy).Scan(&id); err != nil {
			return err
		}
		if po.RequestID != nil {
			tag, err := tx.Exec(ctx, `UPDATE purchase_requests SET
				status = $1, order_id = $2, updated_at = NOW()
				WHERE id = $3 AND status = $4`,
				string(RequestStatusOrdered), id, *po.RequestID, string(RequestStatusApproved))
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: purchase request already ordered", shared.ErrInvalidState)
			}
		}
		return insertLines(ctx, tx, "purchase_order_lines", "order_id", id, po.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, po PurchaseOrder) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET
		status = $1, received_at = $2, approved_by = $3, updated_at = NOW() WHERE id = $4`,
		string(po.Status), po.ReceivedAt, po.ApprovedBy, po.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// --- purchase (AP) invoices ---

const apInvoiceColumns = `id, number, supplier_ref, supplier_id, order_id, status, currency,
subtotal, tax_amount, discount, total_amount, paid_amount, invoice_date, due_date,
posted_by, posted_at, created_by, created_at, updated_at`

func (r *repository) GetAPInvoice(ctx context.Context, id int64) (*PurchaseInvoice, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM purchase_invoices WHERE id = $1`, apInvoiceColumns), id)
	inv, err := scanAPInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	inv.Lines, err = r.loadLines(ctx, "purchase_invoice_lines", "invoice_id", id)
	if err != nil {
		return nil, fmt.Errorf("load purchase invoice lines: %w", err)
	}
	return inv, nil
}

func (r *repository) ListAPInvoices(ctx context.Context, filters ListFilters) ([]PurchaseInvoice, int, error) {
	where, args := purchasingFilters(filters, "supplier_id")
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_invoices "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM purchase_invoices %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		apInvoiceColumns, where, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PurchaseInvoice
	for rows.Next() {
		inv, err := scanAPInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *repository) CreateAPInvoice(ctx context.Context, inv PurchaseInvoice) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := nextNumber(ctx, tx, "APINV", "AP")
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `INSERT INTO purchase_invoices
			(number, supplier_ref, supplier_id, order_id, status, currency, subtotal,
			 tax_amount, discount, total_amount, paid_amount, invoice_date, due_date,
			 created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, $13, NOW(), NOW())
			RETURNING id`,
			number, inv.SupplierRef, inv.SupplierID, inv.OrderID, string(inv.Status),
			inv.Currency, inv.Subtotal, inv.TaxAmount, inv.Discount, inv.TotalAmount,
			inv.InvoiceDate, inv.DueDate, inv.CreatedBy).Scan(&id); err != nil {
			return err
		}
		return insertLines(ctx, tx, "purchase_invoice_lines", "invoice_id", id, inv.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) PostAPInvoice(ctx context.Context, id, posterID int64) (*PurchaseInvoice, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_invoices SET
		status = $1, posted_by = $2, posted_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		string(APInvoiceStatusPosted), posterID, id, string(APInvoiceStatusDraft))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: purchase invoice already left draft", shared.ErrInvalidState)
	}
	return r.GetAPInvoice(ctx, id)
}

// RecordSupplierPayment mirrors the receivable path: serializable isolation,
// balance recomputed from the payment rows before the settle decision.
func (r *repository) RecordSupplierPayment(ctx context.Context, p SupplierPayment) (*PurchaseInvoice, int64, error) {
	var paymentID int64
	err := db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(
			`SELECT %s FROM purchase_invoices WHERE id = $1 FOR UPDATE`, apInvoiceColumns), p.InvoiceID)
		inv, err := scanAPInvoice(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		var paid float64
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0) FROM purchase_invoice_payments WHERE invoice_id = $1`,
			p.InvoiceID).Scan(&paid); err != nil {
			return fmt.Errorf("recompute paid amount: %w", err)
		}
		inv.PaidAmount = paid

		status, err := settleAP(inv, p.Amount)
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `INSERT INTO purchase_invoice_payments
			(invoice_id, amount, payment_date, method, reference, recorded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id`,
			p.InvoiceID, p.Amount, p.PaymentDate, p.Method, p.Reference, p.RecordedBy).Scan(&paymentID); err != nil {
			return fmt.Errorf("insert supplier payment: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE purchase_invoices SET
			paid_amount = $1, status = $2, updated_at = NOW() WHERE id = $3`,
			inv.PaidAmount, string(status), p.InvoiceID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	inv, err := r.GetAPInvoice(ctx, p.InvoiceID)
	if err != nil {
		return nil, 0, err
	}
	return inv, paymentID, nil
}

func (r *repository) ListSupplierPayments(ctx context.Context, invoiceID int64) ([]SupplierPayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, amount, payment_date, method, reference, recorded_by, created_at
		FROM purchase_invoice_payments
		WHERE invoice_id = $1
		ORDER BY payment_date, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupplierPayment
	for rows.Next() {
		var p SupplierPayment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &p.Method,
			&p.Reference, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func purchasingFilters(filters ListFilters, supplierCol string) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}
	if filters.SupplierID > 0 {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", supplierCol, argPos))
		args = append(args, filters.SupplierID)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("number ILIKE $%d", argPos))
		args = append(args, "%"+filters.Search+"%")
	}

	if len(conditions) == 0 {
		return "", args
	}
	where := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}
	return where, args
}

func scanRequest(row pgx.Row) (*PurchaseRequest, error) {
	var pr PurchaseRequest
	err := row.Scan(
		&pr.ID, &pr.Number, &pr.SupplierID, &pr.ProjectID, &pr.Status, &pr.Currency,
		&pr.Subtotal, &pr.TaxAmount, &pr.Discount, &pr.TotalAmount, &pr.Purpose,
		&pr.RequestedBy, &pr.ApprovedBy, &pr.OrderID, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func scanOrder(row pgx.Row) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(
		&po.ID, &po.Number, &po.SupplierID, &po.RequestID, &po.ProjectID, &po.Status,
		&po.Currency, &po.Subtotal, &po.TaxAmount, &po.Discount, &po.TotalAmount,
		&po.OrderDate, &po.ReceivedAt, &po.CreatedBy, &po.ApprovedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func scanAPInvoice(row pgx.Row) (*PurchaseInvoice, error) {
	var inv PurchaseInvoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.SupplierRef, &inv.SupplierID, &inv.OrderID, &inv.Status,
		&inv.Currency, &inv.Subtotal, &inv.TaxAmount, &inv.Discount, &inv.TotalAmount,
		&inv.PaidAmount, &inv.InvoiceDate, &inv.DueDate, &inv.PostedBy, &inv.PostedAt,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
