package vessels

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
	Get(ctx context.Context, id int64) (*Vessel, error)
	List(ctx context.Context, filters mdshared.ListFilters) ([]Vessel, int, error)
	Create(ctx context.Context, vessel Vessel) (int64, error)
	Update(ctx context.Context, id int64, vessel Vessel) error
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const vesselColumns = `id, name, imo_number, flag, vessel_type, gross_tonnage, owner_customer_id,
is_archived, archived_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Vessel, error) {
	var v Vessel
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM vessels WHERE id = $1`, vesselColumns), id).
		Scan(&v.ID, &v.Name, &v.IMONumber, &v.Flag, &v.VesselType, &v.GrossTon, &v.OwnerID,
			&v.IsArchived, &v.ArchivedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Vessel, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR imo_number ILIKE $%d)", argPos, argPos))
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM vessels %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM vessels %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		vesselColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Vessel
	for rows.Next() {
		var v Vessel
		if err := rows.Scan(&v.ID, &v.Name, &v.IMONumber, &v.Flag, &v.VesselType, &v.GrossTon,
			&v.OwnerID, &v.IsArchived, &v.ArchivedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, v Vessel) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO vessels
(name, imo_number, flag, vessel_type, gross_tonnage, owner_customer_id, is_archived, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW()) RETURNING id`,
		v.Name, v.IMONumber, v.Flag, v.VesselType, v.GrossTon, v.OwnerID).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, v Vessel) error {
	_, err := r.pool.Exec(ctx, `UPDATE vessels SET
name = $1, imo_number = $2, flag = $3, vessel_type = $4, gross_tonnage = $5,
owner_customer_id = $6, updated_at = NOW() WHERE id = $7`,
		v.Name, v.IMONumber, v.Flag, v.VesselType, v.GrossTon, v.OwnerID, id)
	return err
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	if archived {
		_, err := r.pool.Exec(ctx, `UPDATE vessels SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE vessels SET is_archived = FALSE, archived_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}
