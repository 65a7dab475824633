package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Create(ctx context.Context, item Item) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Adjust(ctx context.Context, mv Movement) (*Item, error)
	Movements(ctx context.Context, itemID int64) ([]Movement, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, sku, name, unit, unit_cost, qty_on_hand,
is_archived, archived_at, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM inventory_items WHERE id = $1`, itemColumns), id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(sku ILIKE $%d OR name ILIKE $%d)", argPos, argPos))
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM inventory_items "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM inventory_items %s ORDER BY sku ASC LIMIT $%d OFFSET $%d`,
		itemColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO inventory_items
		(sku, name, unit, unit_cost, qty_on_hand, is_archived, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, FALSE, $5, NOW(), NOW())
		RETURNING id`,
		item.SKU, item.Name, item.Unit, item.UnitCost, item.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: SKU %q already exists", shared.ErrConflict, item.SKU)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE inventory_items SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "unit", "unit_cost"} {
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

// Adjust runs the movement inside one transaction: the item row is locked,
// the quantity floor and cost re-averaging applied, and the movement row
// appended. Issues below zero abort before any write.
func (r *repository) Adjust(ctx context.Context, mv Movement) (*Item, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM inventory_items WHERE id = $1 FOR UPDATE`, itemColumns), mv.ItemID)
		item, err := scanItem(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := applyMovement(item, mv); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `INSERT INTO inventory_movements
			(item_id, type, qty, unit_cost, reference, recorded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
			mv.ItemID, string(mv.Type), mv.Qty, mv.UnitCost, mv.Reference, mv.RecordedBy); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE inventory_items SET
			qty_on_hand = $1, unit_cost = $2, updated_at = NOW() WHERE id = $3`,
			item.QtyOnHand, item.UnitCost, mv.ItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, mv.ItemID)
}

func (r *repository) Movements(ctx context.Context, itemID int64) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, item_id, type, qty, unit_cost, reference, recorded_by, created_at
		FROM inventory_movements
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Type, &m.Qty, &m.UnitCost,
			&m.Reference, &m.RecordedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.pool.Exec(ctx, `UPDATE inventory_items SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE inventory_items SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(
		&i.ID, &i.SKU, &i.Name, &i.Unit, &i.UnitCost, &i.QtyOnHand,
		&i.IsArchived, &i.ArchivedAt, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
