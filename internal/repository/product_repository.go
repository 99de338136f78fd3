package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// ProductRepo reads concession products from the product catalog.
// Soft-deleted products are filtered at this boundary and behave as
// if they never existed.
type ProductRepo struct {
    db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the provided database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// GetByIDs returns the requested products keyed by id.  Callers must
// check for missing ids themselves: a requested product absent from
// the result is unknown or soft-deleted.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Product, error) {
    out := make(map[uint64]model.Product, len(ids))
    if len(ids) == 0 {
        return out, nil
    }
    q := `SELECT id, name, price_cents FROM products
          WHERE is_deleted = 0 AND id IN (` + placeholders(len(ids)) + `)`
    args := make([]interface{}, 0, len(ids))
    for _, id := range ids {
        args = append(args, id)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var p model.Product
        if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents); err != nil {
            return nil, err
        }
        out[p.ID] = p
    }
    return out, rows.Err()
}
