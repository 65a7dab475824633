package creditnotes

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
	Get(ctx context.Context, id int64) (*CreditNote, error)
	ListForInvoice(ctx context.Context, invoiceID int64) ([]CreditNote, error)
	Create(ctx context.Context, cn CreditNote) (int64, error)
	Issue(ctx context.Context, id, issuerID int64) (*CreditNote, error)
	SetStatus(ctx context.Context, id int64, status CreditNoteStatus, appliedAt *time.Time) (*CreditNote, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const creditNoteColumns = `id, number, invoice_id, customer_id, status, currency, subtotal,
tax_amount, discount, total_amount, reason, issued_by, issued_at, applied_at,
created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*CreditNote, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM sales_credit_notes WHERE id = $1`, creditNoteColumns), id)
	cn, err := scanCreditNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, credit_note_id, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order
		FROM sales_credit_note_lines
		WHERE credit_note_id = $1
		ORDER BY line_order`, id)
	if err != nil {
		return nil, fmt.Errorf("load credit note lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l CreditNoteLine
		if err := rows.Scan(&l.ID, &l.CreditNoteID, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.TaxRate, &l.TaxAmount, &l.LineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		cn.Lines = append(cn.Lines, l)
	}
	return cn, rows.Err()
}

func (r *repository) ListForInvoice(ctx context.Context, invoiceID int64) ([]CreditNote, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM sales_credit_notes WHERE invoice_id = $1 ORDER BY id`, creditNoteColumns), invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CreditNote
	for rows.Next() {
		cn, err := scanCreditNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cn)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, cn CreditNote) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO sales_credit_notes
			(invoice_id, customer_id, status, currency, subtotal, tax_amount, discount,
			 total_amount, reason, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id`,
			cn.InvoiceID, cn.CustomerID, string(cn.Status), cn.Currency, cn.Subtotal,
			cn.TaxAmount, cn.Discount, cn.TotalAmount, cn.Reason, cn.CreatedBy).Scan(&id); err != nil {
			return err
		}
		for _, l := range cn.Lines {
			if _, err := tx.Exec(ctx, `INSERT INTO sales_credit_note_lines
				(credit_note_id, description, quantity, unit_price, tax_rate, tax_amount, line_total, line_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				id, l.Description, l.Quantity, l.UnitPrice, l.TaxRate,
				l.TaxAmount, l.LineTotal, l.LineOrder); err != nil {
				return fmt.Errorf("insert credit note line %d: %w", l.LineOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Issue(ctx context.Context, id, issuerID int64) (*CreditNote, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO document_sequences (doc_type, period, seq)
			VALUES ($1, '', 1)
			ON CONFLICT (doc_type, period)
			DO UPDATE SET seq = document_sequences.seq + 1
			RETURNING seq`, "CN").Scan(&seq); err != nil {
			return fmt.Errorf("next credit note number: %w", err)
		}
		number := fmt.Sprintf("CN-%06d", seq)

		tag, err := tx.Exec(ctx, `UPDATE sales_credit_notes SET
			number = $1, status = $2, issued_by = $3, issued_at = NOW(), updated_at = NOW()
			WHERE id = $4 AND status = $5`,
			number, string(CreditNoteStatusIssued), issuerID, id, string(CreditNoteStatusDraft))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: credit note already left draft", shared.ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *repository) SetStatus(ctx context.Context, id int64, status CreditNoteStatus, appliedAt *time.Time) (*CreditNote, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_credit_notes SET
		status = $1, applied_at = COALESCE($2, applied_at), updated_at = NOW()
		WHERE id = $3`, string(status), appliedAt, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func scanCreditNote(row pgx.Row) (*CreditNote, error) {
	var cn CreditNote
	err := row.Scan(
		&cn.ID, &cn.Number, &cn.InvoiceID, &cn.CustomerID, &cn.Status, &cn.Currency,
		&cn.Subtotal, &cn.TaxAmount, &cn.Discount, &cn.TotalAmount, &cn.Reason,
		&cn.IssuedBy, &cn.IssuedAt, &cn.AppliedAt, &cn.CreatedBy, &cn.CreatedAt, &cn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cn, nil
}
